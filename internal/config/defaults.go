package config

const (
	defaultConfigPath             = "~/.config/cdrip/config.toml"
	defaultLibraryDir             = "."
	defaultLogDir                 = "~/.local/state/cdrip/logs"
	defaultDevice                 = "/dev/sr0"
	defaultReadyTimeout           = 60
	defaultMusicBrainzBaseURL     = "https://musicbrainz.org/ws/2"
	defaultAppName                = "cdrip"
	defaultAppVersion             = "0.1.0"
	defaultContact                = "https://github.com/cdrip/cdrip"
	defaultLookupTimeoutSeconds   = 15
	defaultCoverArtBaseURL        = "https://coverartarchive.org"
	defaultCoverArtTimeoutSeconds = 15
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StateDir:   defaultStateDir(),
			LogDir:     defaultLogDir,
		},
		Drive: Drive{
			Device:       defaultDevice,
			ReadyTimeout: defaultReadyTimeout,
		},
		MusicBrainz: MusicBrainz{
			BaseURL:        defaultMusicBrainzBaseURL,
			AppName:        defaultAppName,
			AppVersion:     defaultAppVersion,
			Contact:        defaultContact,
			TimeoutSeconds: defaultLookupTimeoutSeconds,
		},
		CoverArt: CoverArt{
			Enabled:        true,
			BaseURL:        defaultCoverArtBaseURL,
			TimeoutSeconds: defaultCoverArtTimeoutSeconds,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
