package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"lattice/internal/config"
)

func TestAppRunOnce(t *testing.T) {
	tmpDir := t.TempDir()

	schemaPath := filepath.Join(tmpDir, "schema.json")
	actionsPath := filepath.Join(tmpDir, "actions.json")
	outPath := filepath.Join(tmpDir, "snapshot.json")

	if err := os.WriteFile(schemaPath, []byte(`{"node_whitelist": ["Stop"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(actionsPath, []byte(`[
		{"AddNode": {"id": 0, "ty": "Stop"}},
		{"AddNode": {"id": 1, "ty": "Stop"}}
	]`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.SchemaPath = schemaPath
	cfg.ActionsPath = actionsPath
	cfg.Output.Snapshot = outPath

	app := NewApp(cfg)
	if err := app.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal("snapshot file was not written:", err)
	}
	var snap struct {
		Nodes map[string]json.RawMessage `json:"nodes"`
		Edges map[string]json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot is not an object: %v", err)
	}
	if len(snap.Nodes) != 2 || len(snap.Edges) != 0 {
		t.Errorf("expected 2 nodes and 0 edges, got %d and %d", len(snap.Nodes), len(snap.Edges))
	}
}

func TestAppRunOnceRejectedBatch(t *testing.T) {
	tmpDir := t.TempDir()

	schemaPath := filepath.Join(tmpDir, "schema.json")
	actionsPath := filepath.Join(tmpDir, "actions.json")
	outPath := filepath.Join(tmpDir, "snapshot.json")

	if err := os.WriteFile(schemaPath, []byte(`{"node_whitelist": ["Stop"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(actionsPath, []byte(`[{"AddNode": {"id": 0, "ty": "Tram"}}]`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.SchemaPath = schemaPath
	cfg.ActionsPath = actionsPath
	cfg.Output.Snapshot = outPath

	app := NewApp(cfg)
	if err := app.RunOnce(context.Background()); err == nil {
		t.Fatal("expected the rejected batch to fail the run")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("no snapshot should be written for a failed replay")
	}
}
