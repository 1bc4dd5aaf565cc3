package configuration

import (
	"encoding/json"
	"os"
	"time"
)

type MongoConfig struct {
	Uri                string `json:"uri"`
	Database           string `json:"database"`
	UsersCollection    string `json:"usersCollection"`
	ChatsCollection    string `json:"chatsCollection"`
	MessagesCollection string `json:"messagesCollection"`
	SocketRoute        string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort    int `json:"app_port"`
	SocketPort int `json:"socket_port"`
}

type NatsConfig struct {
	Url string `json:"url"`
}

type AuthConfig struct {
	Secret        string `json:"secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
}

// TokenTTL defaults to 30 days when the config leaves it unset.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Nats         NatsConfig   `json:"nats"`
	Auth         AuthConfig   `json:"auth"`
	SMTP         SMTPConfig   `json:"smtp"`
}

func LoadConfig(config_path string) (*Config, error) {
	file, err := os.ReadFile(config_path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
