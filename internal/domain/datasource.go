package domain

// DataSourceDriver represents the type of database engine behind a data source.
type DataSourceDriver string

const (
	DataSourceMySQL    DataSourceDriver = "mysql"
	DataSourcePostgres DataSourceDriver = "postgres"
	DataSourceMongoDB  DataSourceDriver = "mongodb"
	DataSourceSQLite   DataSourceDriver = "sqlite"
)

// DataSource describes where dataKey values come from. Query returns a single
// record whose columns (or document fields) are the keys. For MongoDB the
// query is JSON: {"collection": "...", "filter": {...}, "sort": {...}}.
// The password is looked up in the SecretStore under PasswordKey.
type DataSource struct {
	Driver      DataSourceDriver `yaml:"driver" json:"driver"`
	Host        string           `yaml:"host" json:"host"` // hostname, URI or file path (sqlite)
	Port        int              `yaml:"port" json:"port"`
	Database    string           `yaml:"database" json:"database"`
	Username    string           `yaml:"username" json:"username"`
	SSLMode     string           `yaml:"ssl_mode" json:"sslMode"`
	PasswordKey string           `yaml:"password_key" json:"passwordKey"`
	Query       string           `yaml:"query" json:"query"`
}

// Enabled reports whether a source is configured.
func (s DataSource) Enabled() bool {
	return s.Driver != "" && s.Query != ""
}
