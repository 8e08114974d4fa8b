package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"testing"
	"time"

	"deployfreq/internal/deploys"
	"deployfreq/internal/frequency"
)

type listSource []deploys.Deploy

func (l listSource) ResolveAt(ctx context.Context, target deploys.Target, now time.Time, days int) iter.Seq2[deploys.Deploy, error] {
	return func(yield func(deploys.Deploy, error) bool) {
		for _, d := range l {
			if !yield(d, nil) {
				return
			}
		}
	}
}

func testBuckets(t *testing.T) *frequency.DayBuckets {
	t.Helper()

	agg := &frequency.Aggregator{
		Source: listSource{
			{OccurredAt: time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC), Revision: "bbb"},
			{OccurredAt: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC), Revision: "aaa"},
		},
		Now: func() time.Time { return time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC) },
	}

	buckets, err := agg.Aggregate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	return buckets
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := writeReport(context.Background(), &buf, testBuckets(t), nil, logger); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}

	want := "deploys per day\n" +
		"Day: 10-14\n" +
		"- aaa (2026-10-14 09:30:00)\n" +
		"- bbb (2026-10-14 11:00:00)\n" +
		"Day: 10-13\n"
	if buf.String() != want {
		t.Errorf("Unexpected report:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteReport_Headlines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	headline := func(ctx context.Context, revision string) (string, error) {
		if revision == "aaa" {
			return "", errors.New("not found")
		}
		return "Fix login", nil
	}

	if err := writeReport(context.Background(), &buf, testBuckets(t), headline, logger); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}

	want := "deploys per day\n" +
		"Day: 10-14\n" +
		"- aaa (2026-10-14 09:30:00)\n" +
		"- bbb (2026-10-14 11:00:00) Fix login\n" +
		"Day: 10-13\n"
	if buf.String() != want {
		t.Errorf("Unexpected report:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"error", false},
		{"loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := setupLogging(tt.level, false)
			if (err != nil) != tt.wantErr {
				t.Errorf("setupLogging(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}
