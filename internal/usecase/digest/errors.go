// Package digest orchestrates one digest run: fetch the news, extract and
// summarize every article, compose the digest and deliver it by mail.
package digest

import (
	"errors"

	"ai-news-digest/internal/domain/entity"
)

// Failure kinds reported to alerts and mapped to exit codes by the command.
const (
	KindConfig   = "config"
	KindNetwork  = "network"
	KindDelivery = "delivery"
	KindUnknown  = "unknown"
)

// Kind classifies a run error by the domain error it wraps.
func Kind(err error) string {
	var (
		cfgErr      *entity.ConfigError
		netErr      *entity.NetworkError
		deliveryErr *entity.DeliveryError
	)
	switch {
	case errors.As(err, &cfgErr):
		return KindConfig
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &deliveryErr):
		return KindDelivery
	default:
		return KindUnknown
	}
}
