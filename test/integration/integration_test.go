package integration

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/backend/headless"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const romDir = "../../test-roms/game-boy-test-roms"

// Each case runs a fixed number of frames and compares the last frame with a
// text snapshot in testdata/snapshots. Set JEEBIE_GENERATE_GOLDEN=true to
// rewrite the snapshots.
var cases = []struct {
	name   string
	rom    string
	frames int
}{
	{"dmg-acid2", "dmg-acid2/dmg-acid2.gb", 10},
	{"halt_bug", "blargg/halt_bug.gb", 500},
	{"instr_timing", "blargg/instr_timing/instr_timing.gb", 1200},
	{"mem_timing_01-read", "blargg/mem_timing/individual/01-read_timing.gb", 60},
	{"mem_timing_02-write", "blargg/mem_timing/individual/02-write_timing.gb", 60},
	{"mem_timing_03-modify", "blargg/mem_timing/individual/03-modify_timing.gb", 60},
}

func TestSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	generate := os.Getenv("JEEBIE_GENERATE_GOLDEN") == "true"
	snapshotDir := filepath.Join("testdata", "snapshots")
	require.NoError(t, os.MkdirAll(snapshotDir, 0755))

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(romDir, tc.rom)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Skipf("ROM file not found: %s", path)
			}

			sink := video.NewCaptureSink()
			emu, err := jeebie.NewWithFile(path, jeebie.WithSink(sink))
			if errors.Is(err, memory.ErrROMTooLarge) {
				t.Skipf("ROM needs a memory bank controller: %s", path)
			}
			require.NoError(t, err)

			res, err := headless.New(tc.frames, sink, headless.SnapshotConfig{}, false).Run(emu)
			require.NoError(t, err)
			require.Equal(t, tc.frames, res.Frames)

			frame := sink.Last()
			var got bytes.Buffer
			require.NoError(t, headless.WriteSnapshot(&got, &frame, res.Frames))

			golden := filepath.Join(snapshotDir, tc.name+".txt")
			if generate {
				require.NoError(t, os.WriteFile(golden, got.Bytes(), 0644))
				t.Logf("wrote %s (digest %016x)", golden, frame.Digest())
				return
			}

			want, err := os.ReadFile(golden)
			if os.IsNotExist(err) {
				t.Skipf("no snapshot at %s; run with JEEBIE_GENERATE_GOLDEN=true", golden)
			}
			require.NoError(t, err)

			if !assert.Equal(t, digestLine(want), digestLine(got.Bytes()), "frame differs from %s", golden) {
				actual := filepath.Join(snapshotDir, tc.name+"_actual.txt")
				_ = os.WriteFile(actual, got.Bytes(), 0644)
				t.Logf("actual frame saved to %s", actual)
			}
		})
	}
}

// digestLine extracts the digest header of a snapshot file.
func digestLine(snapshot []byte) string {
	for _, line := range strings.Split(string(snapshot), "\n") {
		if _, digest, ok := strings.Cut(line, "Digest: "); ok {
			return digest
		}
	}
	return fmt.Sprintf("no digest in %d byte snapshot", len(snapshot))
}
