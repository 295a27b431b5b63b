package pricing

// Quote результат расчёта цены
type Quote struct {
	TripID     string
	Mode       string // режим, по которому фактически посчитана цена
	Seats      int
	PriceCents int64
	Currency   string
	FellBack   bool // запрошенный режим неизвестен, применён поштучный по умолчанию
}
