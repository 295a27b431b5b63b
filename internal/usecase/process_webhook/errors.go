package process_webhook

import "errors"

var (
	// ErrSignatureInvalid подпись отсутствует, не сходится или просрочена. Повтор не поможет.
	ErrSignatureInvalid = errors.New("process_webhook: invalid signature")

	// ErrInvalidPayload тело события не разбирается или в нём нет обязательных полей
	ErrInvalidPayload = errors.New("process_webhook: invalid payload")

	// ErrTransient ошибка хранилища; событие не записано, провайдер доставит его повторно
	ErrTransient = errors.New("process_webhook: transient storage error")

	// ErrUnsignedDisabled неподписанный приём выключен или задан секрет подписи
	ErrUnsignedDisabled = errors.New("process_webhook: unsigned webhooks are disabled")
)
