package notify

import "testing"

func TestDrainReturnsInOrderAndClears(t *testing.T) {
	f := NewFeed(10)
	f.Info("Анализ запущен", "Обработка данных...")
	f.Error("Ошибка загрузки", "Не удалось загрузить файл")

	got := f.Drain()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Title != "Анализ запущен" || got[0].Variant != VariantDefault {
		t.Fatalf("unexpected first notification %+v", got[0])
	}
	if got[1].Variant != VariantDestructive {
		t.Fatalf("expected destructive variant, got %s", got[1].Variant)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("expected unique ids")
	}
	if f.Pending() != 0 {
		t.Fatalf("expected empty feed after drain")
	}
	if empty := f.Drain(); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestFeedDropsOldestWhenFull(t *testing.T) {
	f := NewFeed(2)
	f.Info("one", "")
	f.Info("two", "")
	f.Info("three", "")

	got := f.Drain()
	if len(got) != 2 || got[0].Title != "two" || got[1].Title != "three" {
		t.Fatalf("unexpected feed contents %+v", got)
	}
}
