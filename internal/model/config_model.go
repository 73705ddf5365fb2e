package model

// Config represents the configuration settings for the application.
type Config struct {
	DatabaseType string `json:"database_type"`
	DatabaseDir  string `json:"database_dir"`
	DatabaseFile string `json:"database_file"`
	StorageKey   string `json:"storage_key"`

	APIURL     string `json:"api_url"`
	APITimeout string `json:"api_timeout"`

	LogFolder  string `json:"log_folder"`
	CommandLog string `json:"command_log"`
	ErrorLog   string `json:"error_log"`
	InfoLog    string `json:"info_log"`
	LogLevel   string `json:"log_level"`

	HistoryFile string `json:"history_file"`
	UI          string `json:"ui"`
}
