package cliparse

import (
	"errors"
	"flag"
	"os"
)

type Config struct {
	APIBase      string
	StatePath    string
	ThemeSongURL string
	PlaylistFile string
}

const defaultStatePath = "pollkit.db"

// ParseFlags validates flags and fills gaps from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("pollkit", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBase, "a", "", "API base URL")
	fs.StringVar(&cfg.StatePath, "s", "", "Local state database path")
	fs.StringVar(&cfg.ThemeSongURL, "theme-url", "", "Theme song URL override")
	fs.StringVar(&cfg.PlaylistFile, "playlist", "", "Local playlist manifest (YAML)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.APIBase == "" {
		cfg.APIBase = os.Getenv("API_BASE_URL")
	}
	if cfg.APIBase == "" {
		return Config{}, errors.New("API base URL required (use -a or API_BASE_URL env)")
	}

	if cfg.StatePath == "" {
		cfg.StatePath = os.Getenv("STATE_PATH")
		if cfg.StatePath == "" {
			cfg.StatePath = defaultStatePath
		}
	}

	if cfg.ThemeSongURL == "" {
		cfg.ThemeSongURL = os.Getenv("THEME_SONG_URL")
	}

	if cfg.PlaylistFile == "" {
		cfg.PlaylistFile = os.Getenv("PLAYLIST_FILE")
	}

	return cfg, nil
}
