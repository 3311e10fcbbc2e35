package config

const (
	defaultConfigPath               = "~/.config/quickstart/config.toml"
	defaultDataDir                  = "~/.local/share/quickstart"
	defaultLogDir                   = "~/.local/share/quickstart/logs"
	defaultDatabaseName             = "quickstart.db"
	defaultAPIBind                  = "127.0.0.1:7171"
	defaultSchemaURL                = "https://raw.githubusercontent.com/Kometa-Team/Kometa/nightly/json-schema/config-schema.json"
	defaultSchemaTimeoutSeconds     = 10
	defaultSchemaCacheMinutes       = 60
	defaultStorage                  = StorageSQLite
	defaultInclusion                = InclusionValidated
	defaultHeaderStyle              = "ascii"
	defaultValidationTimeoutSeconds = 15
	defaultTMDBBaseURL              = "https://api.themoviedb.org/3"
	defaultTraktBaseURL             = "https://api.trakt.tv"
	defaultOMDbBaseURL              = "https://www.omdbapi.com"
	defaultGitHubBaseURL            = "https://api.github.com"
	defaultMDBListBaseURL           = "https://mdblist.com/api"
	defaultNotifiarrBaseURL         = "https://notifiarr.com/api/v1"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Inclusion rules for final assembly.
const (
	InclusionValidated   = "validated"
	InclusionUserEntered = "user_entered"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Schema: Schema{
			URL:            defaultSchemaURL,
			TimeoutSeconds: defaultSchemaTimeoutSeconds,
			CacheMinutes:   defaultSchemaCacheMinutes,
		},
		Wizard: Wizard{
			Storage:                  defaultStorage,
			Inclusion:                defaultInclusion,
			HeaderStyle:              defaultHeaderStyle,
			ValidationTimeoutSeconds: defaultValidationTimeoutSeconds,
		},
		Services: Services{
			TMDBBaseURL:      defaultTMDBBaseURL,
			TraktBaseURL:     defaultTraktBaseURL,
			OMDbBaseURL:      defaultOMDbBaseURL,
			GitHubBaseURL:    defaultGitHubBaseURL,
			MDBListBaseURL:   defaultMDBListBaseURL,
			NotifiarrBaseURL: defaultNotifiarrBaseURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
