package config

import (
	"errors"

	"github.com/cyverse-de/go-mod/cfg"
)

var ServiceName = "SAC"

// Specification defines the configuration settings for the service-application-center.
type Specification struct {
	DatabaseURI         string
	ReinitDB            bool
	RunSchemaMigrations bool
	NatsCluster         string
	DotEnvPath          string
	ConfigPath          string
	EnvPrefix           string
	MaxReconnects       int
	ReconnectWait       int
	CACertPath          string
	TLSKeyPath          string
	TLSCertPath         string
	CredsPath           string
	BaseSubject         string
	BaseQueueName       string
	ListenPort          int
}

// LoadConfig loads the configuration for the service-application-center.
func LoadConfig(envPrefix, configPath, dotEnvPath string) (*Specification, error) {
	k, err := cfg.Init(&cfg.Settings{
		EnvPrefix:   envPrefix,
		ConfigPath:  configPath,
		DotEnvPath:  dotEnvPath,
		StrictMerge: false,
		FileType:    cfg.YAML,
	})
	if err != nil {
		return nil, err
	}

	var s Specification

	s.DatabaseURI = k.String("database.uri")
	if s.DatabaseURI == "" {
		return nil, errors.New("database.uri or SAC_DATABASE_URI must be set")
	}

	s.ReinitDB = k.Bool("reinit.db")
	s.RunSchemaMigrations = k.Bool("migrations.run")

	s.NatsCluster = k.String("nats.cluster")
	if s.NatsCluster == "" {
		return nil, errors.New("nats.cluster must be set in the configuration file")
	}

	s.MaxReconnects = k.Int("nats.max.reconnects")
	s.ReconnectWait = k.Int("nats.reconnect.wait")
	s.CACertPath = k.String("nats.tls.ca.path")
	s.TLSKeyPath = k.String("nats.tls.key.path")
	s.TLSCertPath = k.String("nats.tls.cert.path")
	s.CredsPath = k.String("nats.creds.path")

	s.BaseSubject = k.String("nats.base.subject")
	if s.BaseSubject == "" {
		s.BaseSubject = "sac.>"
	}

	s.BaseQueueName = k.String("nats.base.queue")
	if s.BaseQueueName == "" {
		s.BaseQueueName = "sac"
	}

	s.ListenPort = k.Int("listen.port")
	if s.ListenPort == 0 {
		s.ListenPort = 9000
	}

	return &s, nil
}
