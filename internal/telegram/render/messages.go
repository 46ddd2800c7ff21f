package render

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/futig/lab-assistant/internal/entity"
)

const (
	// Welcome messages
	MsgWelcome = `🌟 Я — виртуальный помощник для заботы о вашем здоровье! 🌟
🔍 Разработан для анализа медицинских данных пациента и результатов лабораторных исследований с целью формирования индивидуальных рекомендаций по оздоровлению.
📊 На основе приложенных документов я могу:
⚠️ Выявить отклонения от нормы
💡 Предложить стратегии коррекции состояния организма
🥗 Разработать персонализированный план питания, соответствующий вашим физиологическим особенностям и потребностям.
ℹ️ Мои рекомендации носят общий характер и не заменяют консультацию врача 👨‍⚕️👩‍⚕️.
💙 Моя цель — помочь вам лучше понимать своё здоровье и принимать осознанные решения в уходе за собой!

Для начала работы и получения персонализированных рекомендаций, пожалуйста, пройдите короткую регистрацию.`

	MsgProfileReset       = "Ваш предыдущий профиль был успешно сброшен.\n"
	MsgProfileResetFailed = "Не удалось полностью сбросить ваш предыдущий профиль, но вы можете пройти регистрацию заново.\n"
	MsgRegistrationBegins = "Начинаем процесс регистрации...\n"
	MsgResetting          = "Выполняю сброс и начинаю регистрацию заново..."

	MsgWelcomeBack = "С возвращением, %s!\nГотов помочь вам с анализом медицинских данных."

	MsgHelp = `ℹ️ *Справочная информация:*
Для начала работы со мной, если вы еще не зарегистрированы, пройдите короткую регистрацию после команды /start.
После регистрации вы сможете прикреплять анализы (PDF или заполнить форму) для получения рекомендаций.

Основные команды:
/start - начать работу с ботом / пройти регистрацию.
/cancel - отменить текущее действие (например, регистрацию или ввод анализов).
/reregister или кнопка '🔄 Начать заново (сброс)' - пройти регистрацию заново, ваши предыдущие данные профиля будут удалены.`

	MsgAbout = `🤖 Бот помогает разобраться в результатах лабораторных анализов.

Загрузите PDF с анализами или заполните онлайн-форму, проверьте распознанные показатели и получите заключение с рекомендациями.
Заключение носит справочный характер и не заменяет консультацию врача.`

	// Cancellation
	MsgCancelled        = "Действие отменено."
	MsgNothingToCancel  = "Нет активных действий для отмены."
	MsgNotRegistered    = "Пожалуйста, сначала пройдите регистрацию. Для этого нажмите /start."
	MsgNotRegisteredYet = "Вы еще не зарегистрированы. Пожалуйста, начните с команды /start."

	// Registration
	MsgLetsBegin        = "Отлично! Давайте начнем."
	MsgAskGender        = "Пожалуйста, укажите ваш пол:"
	MsgPressRegister    = "Нажмите кнопку «📝 Зарегистрироваться», чтобы начать регистрацию."
	MsgAskAge           = "Ваш пол: %s.\nТеперь, пожалуйста, укажите ваш возраст (полных лет, только цифры):"
	MsgAskWeight        = "Ваш возраст: %d лет.\nТеперь укажите ваш вес в килограммах (например, 70 или 70.5):"
	MsgAskHeight        = "Ваш вес: %s кг.\nУкажите ваш рост в сантиметрах (например, 175):"
	MsgAskMedical       = "Ваш рост: %d см.\nТеперь выберите из списка или опишите вашу медицинскую историю (хронические заболевания, если есть, которые могут влиять на анализ крови). Если нет, выберите соответствующий пункт или пропустите."
	MsgUseGenderButtons = "Пожалуйста, выберите пол с помощью кнопок выше."
	MsgAgeNotDigits     = "Пожалуйста, введите возраст цифрами (например, 30)."
	MsgAgeOutOfRange    = "Пожалуйста, введите корректный возраст (от 5 до 120 лет)."
	MsgWeightInvalid    = "Пожалуйста, введите вес корректно цифрами (например, 70 или 70.5)."
	MsgHeightNotDigits  = "Пожалуйста, введите рост цифрами в сантиметрах (например, 175)."
	MsgHeightOutOfRange = "Пожалуйста, введите корректный рост (от 100 до 250 см)."
	MsgTextExpected     = "Пожалуйста, ответьте текстом."

	MsgMedicalOther   = "Пожалуйста, введите вашу медицинскую историю текстом или напишите 'нет', если ничего нет."
	MsgMedicalChosen  = "Выбранная мед. история: %s.\nЕсли хотите добавить еще или изменить, введите текстом. Или нажмите 'Далее'."
	MsgMedicalText    = "Медицинская история принята: %s.\nЕсть ли у вас зависимости (курение, алкоголь)?"
	MsgMedicalSaved   = "Медицинская история сохранена.\nЕсть ли у вас зависимости (курение, алкоголь)?"
	MsgHabitsOther    = "Пожалуйста, опишите ваши зависимости текстом или напишите 'нет'."
	MsgHabitsChosen   = "Выбранные зависимости: %s.\nВведите текст или нажмите 'Далее'."
	MsgHabitsText     = "Зависимости: %s.\nОсобенности рациона?"
	MsgHabitsSaved    = "Зависимости сохранены.\nОсобенности рациона?"
	MsgDietOther      = "Пожалуйста, опишите особенности вашего рациона или напишите 'нет'."
	MsgDietChosen     = "Особенности рациона: %s.\nВведите текст или нажмите 'Далее'."
	MsgDietText       = "Рацион: %s.\nОпишите ваш режим сна:"
	MsgDietSaved      = "Рацион сохранен.\nОпишите ваш режим сна:"
	MsgNothingChosen  = "не указано"
	MsgRegistered     = "✅ Регистрация успешно завершена!\n%s"
	MsgProfileSaved   = "Ваши данные успешно сохранены."
	MsgProfileNotSave = "Произошла ошибка при сохранении ваших данных."

	// Analysis intake
	MsgChooseMethod        = "Как вы хотите предоставить данные анализов?"
	MsgChooseMethodNoForm  = "Как вы хотите предоставить данные анализов?\n(онлайн-форма сейчас недоступна, используйте PDF)"
	MsgUseMethodButtons    = "Пожалуйста, выберите метод предоставления данных с помощью кнопок выше или отмените действие (/cancel)."
	MsgMethodCancelled     = "Выбор метода ввода данных отменен."
	MsgAttachPDF           = "Пожалуйста, прикрепите PDF-файл с вашими анализами."
	MsgNotPDF              = "Пожалуйста, прикрепите файл в формате PDF."
	MsgPDFTooLarge         = "Файл слишком большой. Пожалуйста, прикрепите PDF размером до %d МБ."
	MsgPDFReceived         = "Ваш PDF-файл получен. Начинаю обработку, это может занять некоторое время..."
	MsgPDFExtracted        = "Текст из файла успешно извлечен. Анализирую данные, пожалуйста, подождите..."
	MsgDownloadFailed      = "Не удалось скачать файл. Попробуйте еще раз."
	MsgPDFEmpty            = "Не удалось извлечь текст из PDF. Убедитесь, что это текстовый PDF, а не скан-изображение без текстового слоя."
	MsgPDFEncrypted        = "PDF-файл защищен паролем. Снимите защиту и попробуйте снова."
	MsgPDFCorrupt          = "Ошибка при чтении PDF-файла. Возможно, файл поврежден."
	MsgStructuringFailed   = "Не удалось обработать данные из вашего PDF файла. Возможно, формат документа не поддерживается или произошла ошибка при анализе. Попробуйте другой файл или проверьте его содержимое."
	MsgSelectMethodAgain   = "Пожалуйста, выберите метод ввода данных."
	MsgNoKnownFields       = "К сожалению, не удалось найти известные показатели в предоставленных данных. Пожалуйста, проверьте корректность и попробуйте снова."
	MsgDroppedFields       = "ℹ️ Не распознаны и пропущены показатели: %s"
	MsgFormReceived        = "Данные из формы получены, обрабатываю..."
	MsgFormInvalid         = "Ошибка обработки данных из формы (неверный JSON). Попробуйте снова."
	MsgFormUnexpected      = "Данные формы получены вне ввода анализов. Нажмите «📄 Прикрепить анализы», чтобы начать."
	MsgUseConfirmButtons   = "Пожалуйста, подтвердите данные или выберите действие с помощью кнопок выше."
	MsgNoDataForReport     = "Произошла ошибка: не найдены данные для формирования заключения. Пожалуйста, попробуйте загрузить данные заново."
	MsgSnapshotNotSaved    = "Внимание: произошла ошибка при сохранении ваших данных анализа, но я все равно попробую подготовить заключение."
	MsgProfileMissing      = "Не удалось загрузить ваш профиль для подготовки заключения. Пожалуйста, попробуйте пройти регистрацию заново (/start)."
	MsgNoDataToEdit        = "Не найдены данные для редактирования. Пожалуйста, загрузите данные заново."
	MsgEditCancelled       = "Редактирование отменено. Как вы хотите предоставить данные анализов?"
	MsgEditEmpty           = "Не удалось распознать формат отредактированных данных или вы отправили пустой список.\nУбедитесь, что каждая строка имеет вид `ключ: значение`. Пожалуйста, попробуйте снова, или отмените (/cancel), или загрузите данные заново."
	MsgEditError           = "Произошла ошибка при обработке ваших правок. Пожалуйста, проверьте формат, попробуйте снова, или отмените (/cancel), или загрузите данные заново."
	MsgEditTextExpected    = "Пожалуйста, отправьте исправленный текст сообщением или воспользуйтесь кнопками выше."
	MsgNoEditableText      = "Не удалось найти текст для редактирования. Пожалуйста, начните сначала."
	MsgAnalyzeNew          = "Как вы хотите предоставить новые данные анализов?"
	MsgReportNotAvailable  = "Заключение больше недоступно для скачивания. Проанализируйте данные заново."
	MsgEditInstructions    = "Вы собираетесь редактировать данные, полученные из %s.\nНажмите кнопку 'Показать текст для копирования', чтобы увидеть данные в удобном для копирования виде. Затем скопируйте его, отредактируйте и отправьте мне как обычное сообщение.\n\n*Формат для редактирования:*\n`ключ_показателя: новое значение`\nКаждый показатель на новой строке. Убедитесь, что ключи (на английском) не изменены.\nЕсли хотите удалить показатель, сотрите всю строку с ним или оставьте значение пустым."

	// Free chat
	MsgThinking        = "Думаю..."
	MsgChatUnhelpful   = "Извините, я не могу ответить на этот вопрос так, чтобы это было полезно."
	MsgChatUnavailable = "Сервис временно недоступен или не смог обработать ваш запрос. Пожалуйста, попробуйте позже."

	// Errors
	ErrGeneric            = `❌ Произошла ошибка. Попробуйте ещё раз или нажмите /start`
	ErrInvalidState       = `❌ Неверное состояние. Нажмите /start чтобы начать заново.`
	ErrNetworkIssue       = `❌ Проблема с соединением. Попробуй чуть позже.`
	ErrServiceUnavailable = `❌ Сервис временно недоступен. Попробуй через пару минут.`
	ErrTimeout            = `❌ Операция заняла слишком много времени. Попробуй ещё раз.`
	ErrQuotaExceeded      = `❌ Превышен лимит запросов. Подожди немного.`
	ErrProfileNotFound    = `❌ Профиль не найден. Пройдите регистрацию через /start`
	ErrUnknownCommand     = `❌ Неизвестная команда. Используйте /help`
	ErrUnexpected         = "Произошла неожиданная ошибка при обработке вашего PDF. Пожалуйста, попробуйте позже или обратитесь к администратору."
)

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrProfileNotFound), errors.Is(err, entity.ErrInvalidProfile):
		return ErrProfileNotFound
	case errors.Is(err, entity.ErrInvalidState), errors.Is(err, entity.ErrSessionNotFound):
		return ErrInvalidState
	case errors.Is(err, entity.ErrModelUnavailable):
		return ErrServiceUnavailable
	}

	// Check for timeout errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	// Check for syscall errors (connection refused, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return ErrServiceUnavailable
		}
		return ErrNetworkIssue
	}

	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	// Check error message for common patterns
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "timeout"):
		return ErrTimeout
	case strings.Contains(errMsg, "Too Many Requests"), strings.Contains(errMsg, "quota"):
		return ErrQuotaExceeded
	}

	// Default to generic error
	return ErrGeneric
}
