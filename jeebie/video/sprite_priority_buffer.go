package video

// SpritePriorityBuffer resolves which object owns each pixel of a line.
//
// DMG priority between overlapping objects:
//   - the object with the lower X coordinate wins
//   - on equal X, the lower OAM index wins
//
//	Pixels:     0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15 16 17
//	Sprite 0:                  [-----A-----]                    (X=5, OAM=0)
//	Sprite 1:                           [-----B-----]           (X=10, OAM=1)
//	Result:                    [-----A-----]--B-----]
//
// Objects claim their opaque pixels in OAM order and the buffer keeps the
// winner per pixel, so no sort is needed. A transparent pixel never claims,
// which lets a lower priority object show through it.
type SpritePriorityBuffer struct {
	ownerIndex [FramebufferWidth]int // -1 when unowned
	ownerX     [FramebufferWidth]int
}

// Clear resets the buffer for a new line.
func (s *SpritePriorityBuffer) Clear() {
	for i := range FramebufferWidth {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// TryClaimPixel claims pixelX for the object if it wins priority over the
// current owner. It reports whether the claim succeeded.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	current := s.ownerIndex[pixelX]
	switch {
	case current == -1,
		spriteX < s.ownerX[pixelX],
		spriteX == s.ownerX[pixelX] && spriteIndex < current:
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}
	return false
}

// GetOwner returns the OAM index owning pixelX, or -1.
func (s *SpritePriorityBuffer) GetOwner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
