package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBindingRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Bindings()

	t.Run("get missing binding", func(t *testing.T) {
		_, err := repo.Get("fist")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("upsert inserts then replaces", func(t *testing.T) {
		b := &Binding{Gesture: "fist", Action: "click", Enabled: true}
		if err := repo.Upsert(b); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		got, err := repo.Get("fist")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Action != "click" || !got.Enabled {
			t.Errorf("unexpected binding: %+v", got)
		}
		if string(got.Config) != "{}" {
			t.Errorf("expected default config {}, got %s", got.Config)
		}

		b.Action = "pause"
		b.PluginName = "media"
		b.Enabled = false
		b.Config = json.RawMessage(`{"steps":3}`)
		if err := repo.Upsert(b); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}

		got, _ = repo.Get("fist")
		if got.Action != "pause" || got.PluginName != "media" || got.Enabled {
			t.Errorf("binding not replaced: %+v", got)
		}
		if string(got.Config) != `{"steps":3}` {
			t.Errorf("expected config to be replaced, got %s", got.Config)
		}
	})

	t.Run("list is ordered by gesture", func(t *testing.T) {
		if err := repo.Upsert(&Binding{Gesture: "peace_sign", Action: "scroll_up", Enabled: true}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		bindings, err := repo.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(bindings) != 2 {
			t.Fatalf("expected 2 bindings, got %d", len(bindings))
		}
		if bindings[0].Gesture != "fist" || bindings[1].Gesture != "peace_sign" {
			t.Errorf("unexpected order: %s, %s", bindings[0].Gesture, bindings[1].Gesture)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.Delete("fist"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := repo.Delete("fist"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	v, err := repo.GetFloat(SettingThreshold, 0.75)
	if err != nil {
		t.Fatalf("GetFloat failed: %v", err)
	}
	if v != 0.75 {
		t.Errorf("expected default 0.75, got %f", v)
	}

	if err := repo.SetFloat(SettingThreshold, 0.6); err != nil {
		t.Fatalf("SetFloat failed: %v", err)
	}
	v, _ = repo.GetFloat(SettingThreshold, 0.75)
	if v != 0.6 {
		t.Errorf("expected 0.6, got %f", v)
	}

	if err := repo.Set(SettingThreshold, "high"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := repo.GetFloat(SettingThreshold, 0.75); err == nil {
		t.Error("expected parse error for non-numeric setting")
	}

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecognitionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Recognitions()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recs := []*Recognition{
		{SessionID: "a", Gesture: "fist", Confidence: 0.85, Action: "resume", CreatedAt: base},
		{SessionID: "a", Gesture: "fist", Confidence: 0.65, CreatedAt: base.Add(time.Second)},
		{SessionID: "b", Gesture: "pointing", Confidence: 0.88, Action: "click", Handedness: "Left", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, rec := range recs {
		if err := repo.Create(rec); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if rec.ID == "" {
			t.Error("expected ID to be assigned")
		}
	}

	t.Run("list recent is newest first", func(t *testing.T) {
		got, err := repo.ListRecent(2)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 recognitions, got %d", len(got))
		}
		if got[0].Gesture != "pointing" || got[0].Handedness != "Left" {
			t.Errorf("unexpected newest recognition: %+v", got[0])
		}
		if got[1].Handedness != "Unknown" {
			t.Errorf("expected default handedness Unknown, got %s", got[1].Handedness)
		}
	})

	t.Run("stats group by gesture", func(t *testing.T) {
		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if len(stats) != 2 {
			t.Fatalf("expected 2 gestures, got %d", len(stats))
		}
		fist := stats[0]
		if fist.Gesture != "fist" || fist.Count != 2 {
			t.Errorf("unexpected fist stats: %+v", fist)
		}
		if fist.AvgConfidence < 0.749 || fist.AvgConfidence > 0.751 {
			t.Errorf("expected avg confidence 0.75, got %f", fist.AvgConfidence)
		}
	})

	t.Run("delete before", func(t *testing.T) {
		n, err := repo.DeleteBefore(base.Add(2 * time.Second))
		if err != nil {
			t.Fatalf("DeleteBefore failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 rows removed, got %d", n)
		}
	})
}
