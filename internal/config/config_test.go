package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	c := Load()
	if c.MaxConcurrentRefreshes != 8 {
		t.Errorf("MaxConcurrentRefreshes default: got %d", c.MaxConcurrentRefreshes)
	}
	if c.RefreshRatePerSecond != 4.0 {
		t.Errorf("RefreshRatePerSecond default: got %v", c.RefreshRatePerSecond)
	}
	if c.FetchTimeout != 5*time.Minute {
		t.Errorf("FetchTimeout default: got %v", c.FetchTimeout)
	}
	if c.HistoryCapacity != 512 {
		t.Errorf("HistoryCapacity default: got %d", c.HistoryCapacity)
	}
	if c.MetricsAddr != "" {
		t.Errorf("MetricsAddr default should be empty: got %q", c.MetricsAddr)
	}
	if c.DBPath != c.DataDir+"/hedgepod.sqlite" {
		t.Errorf("DBPath default: got %q", c.DBPath)
	}
	if c.HistoryPath != c.DataDir+"/history" {
		t.Errorf("HistoryPath default: got %q", c.HistoryPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("HEDGEPOD_DATA_DIR", "/tmp/hedgepod-test")
	os.Setenv("HEDGEPOD_MAX_CONCURRENT_REFRESHES", "3")
	os.Setenv("HEDGEPOD_REFRESH_RATE", "1.5")
	os.Setenv("HEDGEPOD_FETCH_TIMEOUT", "10s")
	os.Setenv("HEDGEPOD_METRICS_ADDR", ":9090")
	c := Load()
	if c.DataDir != "/tmp/hedgepod-test" {
		t.Errorf("DataDir: got %q", c.DataDir)
	}
	if c.MaxConcurrentRefreshes != 3 {
		t.Errorf("MaxConcurrentRefreshes: got %d", c.MaxConcurrentRefreshes)
	}
	if c.RefreshRatePerSecond != 1.5 {
		t.Errorf("RefreshRatePerSecond: got %v", c.RefreshRatePerSecond)
	}
	if c.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout: got %v", c.FetchTimeout)
	}
	if c.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr: got %q", c.MetricsAddr)
	}
	if c.DBPath != "/tmp/hedgepod-test/hedgepod.sqlite" {
		t.Errorf("DBPath should derive from overridden DataDir: got %q", c.DBPath)
	}
}

func TestLoadExplicitDBAndHistoryPaths(t *testing.T) {
	os.Clearenv()
	os.Setenv("HEDGEPOD_DB_PATH", "/var/lib/hedgepod/custom.sqlite")
	os.Setenv("HEDGEPOD_HISTORY_PATH", "/var/lib/hedgepod/hist")
	c := Load()
	if c.DBPath != "/var/lib/hedgepod/custom.sqlite" {
		t.Errorf("DBPath override: got %q", c.DBPath)
	}
	if c.HistoryPath != "/var/lib/hedgepod/hist" {
		t.Errorf("HistoryPath override: got %q", c.HistoryPath)
	}
}

func TestLoadZeroMaxConcurrentRefreshesFallsBackToDefault(t *testing.T) {
	os.Clearenv()
	os.Setenv("HEDGEPOD_MAX_CONCURRENT_REFRESHES", "0")
	c := Load()
	if c.MaxConcurrentRefreshes != 8 {
		t.Errorf("MaxConcurrentRefreshes should fall back to 8 when set to 0: got %d", c.MaxConcurrentRefreshes)
	}
}
