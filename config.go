package pgdb

import (
	"net"
	"net/url"
	"strconv"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort uint16 = 5432

// Config describes how the gateway reaches PostgreSQL.
type Config struct {
	Host     string
	Port     uint16
	Database string
	User     string
	Password string

	// RequireTLS disables plaintext connections.
	RequireTLS bool

	// InsecureSkipVerify accepts any server certificate when RequireTLS is
	// set. Production mode turns it on unless DB_TLS_VERIFY is true.
	InsecureSkipVerify bool
}

func (c Config) port() uint16 {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

func (c Config) sslMode() string {
	switch {
	case !c.RequireTLS:
		return "disable"
	case c.InsecureSkipVerify:
		return "require"
	default:
		return "verify-full"
	}
}

// ConnString returns the URL-form DSN for c.
// It contains credentials and must be treated as secret material.
func (c Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(int(c.port()))),
		Path:   "/" + c.Database,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}

	q := url.Values{}
	if c.User == "" && c.Password != "" {
		// No userinfo to carry it; pgx falls back to the OS user.
		q.Set("password", c.Password)
	}
	q.Set("sslmode", c.sslMode())
	u.RawQuery = q.Encode()

	return u.String()
}
