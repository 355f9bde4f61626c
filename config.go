package mailroom

// Config represents the main config
type Config struct {
	DB struct {
		Type string // "sqlite" or "bolt"
		Path string
	}

	HTTP struct {
		Addr string
	}

	Site struct {
		BaseURL string
	}

	Admin struct {
		Token string
	}

	Mail struct {
		Provider string // "smtp" or "mailjet"
		From     string
		Product  struct {
			Name string
		}
		SMTP struct {
			Host     string
			Port     int
			Username string
			Password string
		}
		Mailjet struct {
			APIKey    string
			SecretKey string
		}
	}

	Sentry struct {
		DSN string
	}
}
