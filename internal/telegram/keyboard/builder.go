package keyboard

import (
	"slices"

	"github.com/futig/lab-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard buttons
const (
	BtnRegister       = "📝 Зарегистрироваться"
	BtnAttachAnalyses = "📄 Прикрепить анализы"
	BtnAbout          = "ℹ️ О боте"
	BtnProfile        = "⚙️ Мой профиль"
	BtnReset          = "🔄 Начать заново (сброс)"
)

const (
	selectedMark = "✅ "
	otherLabel   = "➡️ Другое / Ввести текстом"
)

// Builder creates inline and reply keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// MainMenu is the reply keyboard for registered users
func (b *Builder) MainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAttachAnalyses),
			tgbotapi.NewKeyboardButton(BtnAbout),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnProfile)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnReset)),
	)
	kb.InputFieldPlaceholder = "Выберите действие..."
	return kb
}

// RegistrationStart is the reply keyboard offering registration
func (b *Builder) RegistrationStart() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnRegister)),
	)
	kb.InputFieldPlaceholder = "Нажмите, чтобы зарегистрироваться"
	return kb
}

// RemoveReply hides any reply keyboard
func (b *Builder) RemoveReply() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(true)
}

// Gender creates the gender choice buttons
func (b *Builder) Gender() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚹 Мужской", EncodeCallback(ActionGender, entity.GenderMale)),
			tgbotapi.NewInlineKeyboardButtonData("🚺 Женский", EncodeCallback(ActionGender, entity.GenderFemale)),
		),
	)
}

// Presets creates one button per preset, marking selected ones, plus a free text button
func (b *Builder) Presets(action string, presets []entity.Preset, selected []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(presets)+1)
	for _, p := range presets {
		label := p.Label
		if slices.Contains(selected, p.Code) {
			label = selectedMark + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(action, p.Code)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(otherLabel, EncodeCallback(action, ValueOther)),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// PresetsWithNext is Presets plus a "next" button leading to step next
func (b *Builder) PresetsWithNext(action string, presets []entity.Preset, selected []string, next string) tgbotapi.InlineKeyboardMarkup {
	kb := b.Presets(action, presets, selected)
	kb.InlineKeyboard = append(kb.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➡️ Далее", EncodeCallback(ActionNext, next)),
	))
	return kb
}

// Method creates the input method choice. The form button is a link and is
// omitted when formURL is empty.
func (b *Builder) Method(formURL string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Загрузить PDF", EncodeCallback(ActionMethod, ValuePDF)),
		),
	}
	if formURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📝 Заполнить форму онлайн", formURL),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Отмена", EncodeCallback(ActionMethod, ValueCancel)),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Confirm creates the confirmation buttons for parsed data
func (b *Builder) Confirm() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Все верно", EncodeCallback(ActionConfirm, ValueOK)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Редактировать", EncodeCallback(ActionConfirm, ValueEdit)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Ввести другие данные", EncodeCallback(ActionConfirm, ValueReload)),
		),
	)
}

// Edit creates the buttons shown with edit instructions
func (b *Builder) Edit() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Показать текст для копирования", EncodeCallback(ActionEdit, ValueResend)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад (отмена редактирования)", EncodeCallback(ActionEdit, ValueCancel)),
		),
	)
}

// AfterReport creates the follow-up actions and download buttons
func (b *Builder) AfterReport() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 MD", EncodeCallback(ActionDownload, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📥 PDF", EncodeCallback(ActionDownload, string(entity.FormatPDF))),
			tgbotapi.NewInlineKeyboardButtonData("📥 DOCX", EncodeCallback(ActionDownload, string(entity.FormatDOCX))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Проанализировать другие данные", EncodeCallback(ActionReport, ValueNew)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Изменить профиль / Перерегистрация", EncodeCallback(ActionReport, ValueReregister)),
		),
	)
}
