package cache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const stockText = `damage_pct {
 # "+%0%% increased Damage"
}`

const customText = `damage_pct {
 # "+%0%% more Damage"
}`

const overlayText = `damage_pct {
 # "+%0%% increased Damage (patched)"
}
new_stat {
 # "%0% added by overlay"
}`

func mapSource(files map[string]string) Source {
	return func(name string) (string, error) {
		text, ok := files[name]
		if !ok {
			return "", fmt.Errorf("no such file %q", name)
		}
		return text, nil
	}
}

func TestGetParsesOncePerName(t *testing.T) {
	var reads atomic.Int32
	src := func(name string) (string, error) {
		reads.Add(1)
		return stockText, nil
	}
	c := New(src)

	first, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Fatal("repeated Get should return the same store")
	}
	if _, err := c.Get("map_stat_descriptions.txt"); err != nil {
		t.Fatalf("Get other name: %v", err)
	}
	if got := reads.Load(); got != 2 {
		t.Fatalf("source reads = %d, want 2 (one per name)", got)
	}
}

func TestGetConcurrentSharesOneParse(t *testing.T) {
	var reads atomic.Int32
	src := func(name string) (string, error) {
		reads.Add(1)
		return stockText, nil
	}
	c := New(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get("stat_descriptions.txt"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := reads.Load(); got != 1 {
		t.Fatalf("source reads = %d, want 1", got)
	}
}

func TestGetFailureIsNotCached(t *testing.T) {
	files := map[string]string{}
	c := New(mapSource(files))

	if _, err := c.Get("stat_descriptions.txt"); err == nil {
		t.Fatal("Get of missing file should fail")
	}

	// The source recovers; the next Get retries instead of replaying
	// the cached failure.
	files["stat_descriptions.txt"] = stockText
	f, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	if f.Lookup([]string{"damage_pct"}) == nil {
		t.Fatal("recovered file missing damage_pct")
	}
}

func TestGetParseErrorCarriesName(t *testing.T) {
	c := New(mapSource(map[string]string{"broken.txt": "not a block"}))
	_, err := c.Get("broken.txt")
	if err == nil {
		t.Fatal("Get of malformed file should fail")
	}
	if got := err.Error(); !strings.Contains(got, "broken.txt") || !strings.Contains(got, "line 1") {
		t.Fatalf("error = %q, want file name and line number", got)
	}
}

func TestSetCustomShadowsSource(t *testing.T) {
	c := New(mapSource(map[string]string{"stat_descriptions.txt": stockText}))
	if err := c.SetCustom("stat_descriptions.txt", customText); err != nil {
		t.Fatalf("SetCustom: %v", err)
	}

	f, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	res, err := f.Translate([]string{"damage_pct"}, []int{15})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "+15% more Damage" {
		t.Fatalf("text = %q, want custom wording", res.Text)
	}

	if err := c.SetCustom("x", "not a block"); err == nil {
		t.Fatal("SetCustom of malformed text should fail")
	}
}

func TestHardcodedNamespace(t *testing.T) {
	c := New(mapSource(map[string]string{}))
	if err := c.SetHardcoded("virtual", stockText); err != nil {
		t.Fatalf("SetHardcoded: %v", err)
	}

	f, err := c.Hardcoded("virtual")
	if err != nil {
		t.Fatalf("Hardcoded: %v", err)
	}
	if f.Lookup([]string{"damage_pct"}) == nil {
		t.Fatal("hardcoded store missing damage_pct")
	}

	// The hardcoded namespace never leaks into Get.
	if _, err := c.Get("virtual"); err == nil {
		t.Fatal("Get should not serve hardcoded entries")
	}
	if _, err := c.Hardcoded("missing"); err == nil {
		t.Fatal("Hardcoded of unknown name should fail")
	}
}

func TestCustomOverlayMergedIntoEveryFile(t *testing.T) {
	c := New(mapSource(map[string]string{"stat_descriptions.txt": stockText}),
		WithCustomOverlay(overlayText))

	f, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	res, err := f.Translate([]string{"damage_pct"}, []int{15})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "+15% increased Damage (patched)" {
		t.Fatalf("text = %q, want overlay wording", res.Text)
	}
	if f.Lookup([]string{"new_stat"}) == nil {
		t.Fatal("overlay-only key missing from merged store")
	}
}

func TestMalformedOverlaySurfacesOnGet(t *testing.T) {
	c := New(mapSource(map[string]string{"stat_descriptions.txt": stockText}),
		WithCustomOverlay("not a block"))

	if _, err := c.Get("stat_descriptions.txt"); err == nil {
		t.Fatal("Get with malformed overlay should fail")
	}
}

func TestReset(t *testing.T) {
	files := map[string]string{"stat_descriptions.txt": stockText}
	c := New(mapSource(files))
	if err := c.SetHardcoded("virtual", stockText); err != nil {
		t.Fatalf("SetHardcoded: %v", err)
	}

	before, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	c.Reset()

	// Rebuilt from source, not served from the old map.
	files["stat_descriptions.txt"] = customText
	after, err := c.Get("stat_descriptions.txt")
	if err != nil {
		t.Fatalf("Get after Reset: %v", err)
	}
	if before == after {
		t.Fatal("Reset should drop cached stores")
	}
	if _, err := c.Hardcoded("virtual"); err == nil {
		t.Fatal("Reset should drop hardcoded entries")
	}
}
