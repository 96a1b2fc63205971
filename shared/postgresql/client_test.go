package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "explicit ssl mode",
			config: Config{Host: "db", Port: 5432, User: "jobboard", Password: "pw", Database: "jobboard", SSLMode: "require"},
			want:   "host=db port=5432 user=jobboard password=pw dbname=jobboard sslmode=require",
		},
		{
			name:   "ssl disabled by default",
			config: Config{Host: "localhost", Port: 5433, User: "u", Password: "p", Database: "d"},
			want:   "host=localhost port=5433 user=u password=p dbname=d sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}
