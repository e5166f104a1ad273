package trace

import (
	"strings"
	"testing"

	"github.com/udoprog/livemix-go/wire"
)

func TestWriteReadFrameIndexRoundTrip(t *testing.T) {
	records := []FrameRecord{
		RecordFrame(wire.Header{DestID: 0, Op: 1, Size: 16, Seq: 0, NumFds: 0}),
		RecordFrame(wire.Header{DestID: 3, Op: 5, Size: 48, Seq: 1, NumFds: 2}),
	}

	var buf strings.Builder
	if err := WriteFrameIndex(records, &buf); err != nil {
		t.Fatalf("WriteFrameIndex: %v", err)
	}

	got, err := ReadFrameIndex(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadFrameIndex: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}
