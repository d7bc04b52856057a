package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

// Sheet ranges quote tab names that contain spaces; the quotes must survive .env parsing.
func TestGodotenvQuoting_SheetRange(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "GOOGLE_SHEET_RANGE=\"'Walk-ins 2024'!A:Z\"\nGOOGLE_API_KEY='key with \"quotes\"'\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(envPath)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	for key, expected := range map[string]string{
		"GOOGLE_SHEET_RANGE": `'Walk-ins 2024'!A:Z`,
		"GOOGLE_API_KEY":     `key with "quotes"`,
	} {
		if env[key] != expected {
			t.Errorf("%s: expected %s, got %s", key, expected, env[key])
		}
		t.Setenv(key, env[key])
	}

	t.Setenv("DATA_PATH", t.TempDir())
	cfg := fromEnv("")
	if cfg.Sheet.Range != `'Walk-ins 2024'!A:Z` {
		t.Errorf("range did not reach the sheet config: %q", cfg.Sheet.Range)
	}
}
