package cli

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"

	"orchard/internal/block"
	"orchard/internal/config"
	"orchard/internal/infra/block/memory"
	"orchard/pkg/genome"
)

type runResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes args against store with a fixed random seed.
func runCLI(t *testing.T, store block.Store, args ...string) runResult {
	t.Helper()
	a := &app{
		openStore: func(context.Context, config.Config) (block.Store, error) { return store, nil },
		random:    rand.New(rand.NewPCG(7, 7)),
	}
	var stdout, stderr bytes.Buffer
	code := execute(newRootCommand(a), args, &stdout, &stderr)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func haploid(name string, v [11]uint16) genome.Haploid {
	return genome.Haploid{
		CDPeriod:   uint8(v[0]),
		CDRate:     uint8(v[1]),
		CDDir:      uint8(v[2]),
		Sat:        uint8(v[3]),
		HueBase:    uint8(v[4]),
		HueRateDir: genome.HueRateDir(v[5]),
		HueBound:   uint8(v[6]),
		Lin:        uint8(v[7]),
		Strobe:     uint8(v[8]),
		Accel:      uint8(v[9]),
		Mic:        uint8(v[10]),
		Name:       genome.MustName(name),
	}
}

// fixtureFamily is a hand-built family whose slot 3 backs the golden report.
func fixtureFamily() genome.Family {
	f := genome.Family{
		Signature: genome.Signature,
		Version:   genome.Version,
		Name:      genome.MustName("SassyHotRaver"),
	}
	for i := range genome.FamilySize {
		f.Maternal[i] = haploid("SillyCuteHippie", [11]uint16{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
		f.Paternal[i] = haploid("LacyRedBlinky", [11]uint16{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2})
	}
	f.Maternal[3] = haploid("HappyPlayaVirus", [11]uint16{2, 200, 100, 250, 30, 0x0305, 40, 7, 0, 128, 9})
	f.Paternal[3] = haploid("DustyOMGBrain", [11]uint16{5, 101, 160, 3, 50, 0x0207, 10, 8, 255, 128, 90})
	return f
}

func seededStore(t *testing.T, f genome.Family) *memory.Store {
	t.Helper()
	store := memory.New()
	if err := store.PatchData(context.Background(), 1, genome.Encode(f), 0); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}
