package capacity

import "github.com/m04kA/SMC-ReservationCore/pkg/dbmetrics"

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
