package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"overseer.ai/internal/dispatch"
)

func TestTraceLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTraceLogger(dir)

	want := []dispatch.Decision{
		{Tick: 1, AgentID: "A_1", Category: "HAUL", ModuleID: "haul_stockpile", TargetID: "E_1", Outcome: dispatch.OutcomeDispatched},
		{Tick: 2, AgentID: "A_2", Category: "GROW", ModuleID: "harvest_plant", Outcome: dispatch.OutcomeNoTarget},
	}
	for _, d := range want {
		if err := l.WriteDecision(d); err != nil {
			t.Fatalf("WriteDecision: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "traces", "trace-*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("trace files = %v (err %v), want exactly one", files, err)
	}

	f, err := os.Open(files[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []dispatch.Decision
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var d dispatch.Decision
		if err := json.Unmarshal(sc.Bytes(), &d); err != nil {
			t.Fatalf("unmarshal %q: %v", sc.Text(), err)
		}
		got = append(got, d)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("decoded %d decisions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("decision %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTraceLoggerCloseWithoutWrites(t *testing.T) {
	l := NewTraceLogger(t.TempDir())
	if err := l.Close(); err != nil {
		t.Fatalf("Close on idle logger: %v", err)
	}
}
