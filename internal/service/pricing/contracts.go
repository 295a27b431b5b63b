package pricing

import "github.com/m04kA/SMC-ReservationCore/internal/domain"

// CatalogSource источник текущего снимка каталога
type CatalogSource interface {
	Snapshot() *domain.Catalog
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
