package analysis

// User-facing notification texts.
const (
	msgInvalidFileTitle  = "Неверный формат файла"
	msgInvalidFileDesc   = "Пожалуйста, загрузите CSV файл"
	msgUploadFailedTitle = "Ошибка загрузки"
	msgUploadFailedDesc  = "Не удалось загрузить файл"
	msgStartedTitle      = "Анализ запущен"
	msgStartedDesc       = "Обработка данных..."
	msgCompletedTitle    = "Анализ завершён"
	msgCompletedDesc     = "Результаты готовы к просмотру"
	msgPollFailedTitle   = "Ошибка анализа"
	msgPollFailedDesc    = "Сервер не отвечает, анализ остановлен. Попробуйте загрузить файл снова"
	msgPollTimeoutDesc   = "Превышено время ожидания результатов. Попробуйте загрузить файл снова"
)
