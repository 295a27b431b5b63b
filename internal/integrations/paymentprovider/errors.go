package paymentprovider

import "errors"

var (
	// ErrRejected провайдер отклонил запрос (4xx): повтор с теми же параметрами не поможет
	ErrRejected = errors.New("paymentprovider: request rejected")

	// ErrUnavailable провайдер недоступен или ответил 5xx: запрос можно повторить
	ErrUnavailable = errors.New("paymentprovider: provider unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentprovider client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("paymentprovider client: invalid response")
)
