package memory

// Interceptor observes and optionally transforms bus traffic.
//
// OnRead receives the value produced by the owning region and returns the
// value handed to the next interceptor (and finally to the caller).
// OnWrite receives the candidate value of a write and returns the candidate
// for the next interceptor; the last one is committed to the owner.
type Interceptor interface {
	OnRead(address uint16, value byte) byte
	OnWrite(address uint16, value byte) byte
}

// PassThrough implements Interceptor as the identity. Embed it to only
// override the hook you care about.
type PassThrough struct{}

func (PassThrough) OnRead(_ uint16, value byte) byte  { return value }
func (PassThrough) OnWrite(_ uint16, value byte) byte { return value }
