package bootstrap

import (
	"log/slog"

	"github.com/sergejparity/e-invoice/config"
	"github.com/sergejparity/e-invoice/internal/core"
	"github.com/sergejparity/e-invoice/internal/provider"
	"github.com/sergejparity/e-invoice/internal/provider/gateway"
	"github.com/sergejparity/e-invoice/internal/provider/rest"
)

// BuildProvider constructs the delivery backend selected by configuration.
// An incompletely configured gateway or rest backend falls back to the
// simulator with a warning rather than failing startup, so a developer
// machine without credentials still exercises the full dispatch path.
//
//nolint:ireturn // The provider port is the whole point of this factory.
func BuildProvider(cfg config.AppConfig, logger *slog.Logger) core.Provider {
	switch cfg.Provider.Kind {
	case config.ProviderGateway:
		if cfg.Provider.BaseURL == "" || cfg.Provider.CertThumbprint == "" || cfg.Sender.EAddress == "" {
			logger.Warn("gateway provider requires base URL, cert thumbprint and sender e-address; using simulator",
				"base_url_set", cfg.Provider.BaseURL != "",
				"cert_thumbprint_set", cfg.Provider.CertThumbprint != "",
				"sender_eaddress_set", cfg.Sender.EAddress != "")
			break
		}
		return gateway.NewClient(gateway.Options{
			BaseURL:        cfg.Provider.BaseURL,
			CertThumbprint: cfg.Provider.CertThumbprint,
			SenderEAddress: cfg.Sender.EAddress,
			SenderTitle:    cfg.Sender.Title,
			Logger:         logger,
		})
	case config.ProviderRest:
		if cfg.Provider.BaseURL == "" {
			logger.Warn("rest provider requires a base URL; using simulator")
			break
		}
		// Credentials are resolved lazily at submit time so a client
		// without them still constructs; missing credentials surface as a
		// submission failure on the job.
		return rest.NewClient(rest.Options{
			BaseURL:      cfg.Provider.BaseURL,
			APIKey:       cfg.Provider.APIKey,
			ClientID:     cfg.Provider.ClientID,
			ClientSecret: cfg.Provider.ClientSecret,
			TokenURL:     cfg.Provider.TokenURL,
			Logger:       logger,
		})
	case config.ProviderMock:
	}

	return provider.NewSimulator(provider.SimulatorOptions{
		Delay:  cfg.Queue.SimulatorDelay,
		Logger: logger,
	})
}
