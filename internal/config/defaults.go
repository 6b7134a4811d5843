package config

const (
	defaultCacheFile         = "~/.cache/overture/results.json"
	defaultDownloadDir       = "~/.local/share/overture/downloads"
	defaultLogDir            = "~/.local/share/overture/logs"
	defaultLibraryIndexDB    = "~/.cache/overture/library.db"
	defaultCacheTTLDays      = 7
	defaultCacheMaxAlbums    = 10
	defaultSweepIntervalDays = 1
	defaultKhinsiderBaseURL  = "https://downloads.khinsider.com"
	defaultKhinsiderTimeout  = 30
	defaultKhinsiderRPM      = 20
	defaultYtdlpBinary       = "yt-dlp"
	defaultYouTubeLimit      = 10
	defaultYouTubeTimeout    = 60
	defaultAcceptThreshold   = 1000
	defaultPreviewMinSeconds = 90
	defaultPreviewMaxSeconds = 300
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultPriority() []string {
	return []string{"library", "khinsider", "youtube"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheFile:   defaultCacheFile,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
		},
		Cache: Cache{
			Enabled:           true,
			TTLDays:           defaultCacheTTLDays,
			MaxAlbums:         defaultCacheMaxAlbums,
			SweepIntervalDays: defaultSweepIntervalDays,
		},
		Sources: Sources{
			Priority: defaultPriority(),
			Khinsider: Khinsider{
				Enabled:           true,
				BaseURL:           defaultKhinsiderBaseURL,
				TimeoutSeconds:    defaultKhinsiderTimeout,
				RequestsPerMinute: defaultKhinsiderRPM,
			},
			YouTube: YouTube{
				Enabled:        true,
				Binary:         defaultYtdlpBinary,
				SearchLimit:    defaultYouTubeLimit,
				TimeoutSeconds: defaultYouTubeTimeout,
			},
			Library: Library{
				IndexDB: defaultLibraryIndexDB,
			},
		},
		Scoring: Scoring{
			AcceptThreshold:   defaultAcceptThreshold,
			PreviewMinSeconds: defaultPreviewMinSeconds,
			PreviewMaxSeconds: defaultPreviewMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
