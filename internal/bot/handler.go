package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/markalert"
	"github.com/jheinrich-dev/campusplan/internal/timetable"
	"github.com/jheinrich-dev/campusplan/internal/validate"
)

// Callback actions of the subscription wizard. The payload follows the
// action after a colon, e.g. "ADD_SEMINAR_GROUP_ID:CS23-2".
const (
	actionAddSeminarGroup = "ADD_SEMINAR_GROUP_ID"
	actionAddModuleCode   = "ADD_MODULE_CODE"
	actionAddYear         = "ADD_YEAR"
	actionAddPeriod       = "ADD_PERIOD"
	actionRemoveModule    = "REMOVE_USER_MODULE"
	actionClearModules    = "CLEAR_USER_MODULES"

	customModuleChoice = "CUSTOM"
	clearConfirm       = "CONFIRM"

	// How many years the year keyboard reaches back from next year.
	yearChoices = 10
)

// Response is the outcome of handling one update: the messages to send and
// whether the triggering message should be deleted afterwards.
type Response struct {
	Messages      []tgbotapi.Chattable
	DeleteTrigger bool
}

func reply(chatID int64, text string) Response {
	return Response{Messages: []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, text)}}
}

func replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) Response {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return Response{Messages: []tgbotapi.Chattable{msg}}
}

// Handler implements the bot's command, callback and text logic. It is
// transport-free: the runner feeds it updates and sends what it returns,
// which keeps the wizard testable without a live bot connection.
type Handler struct {
	conversations *Manager
	timetables    *timetable.Service
	store         *markalert.Store
	log           *logger.Logger
}

// NewHandler creates a bot handler.
func NewHandler(conversations *Manager, timetables *timetable.Service, store *markalert.Store, log *logger.Logger) *Handler {
	return &Handler{
		conversations: conversations,
		timetables:    timetables,
		store:         store,
		log:           log.WithModule("bot"),
	}
}

// HandleCommand handles a slash command.
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command string) Response {
	chat := h.conversations.Load(chatID)

	switch command {
	case "start":
		return Response{
			Messages:      []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Bot gestartet 🚀")},
			DeleteTrigger: true,
		}

	case "show":
		if chat.State != StateReady {
			return reply(chatID, "Nicht bereit!")
		}
		exams, err := h.store.LoadSubscriber(chatID)
		if err != nil {
			h.log.WithError(err).WithChatID(chatID).Error("Benachrichtigungen konnten nicht geladen werden")
			return reply(chatID, "Benachrichtigungen konnten nicht geladen werden!")
		}
		lines := make([]string, 0, len(exams))
		for _, exam := range exams {
			lines = append(lines, "- "+exam.Key())
		}
		list := strings.Join(lines, "\n")
		if list == "" {
			list = "Keine Prüfungen"
		}
		return reply(chatID, "Du hast Benachrichtigung für die folgenden Prüfungen aktiviert:\n"+list)

	case "add":
		if chat.State != StateReady {
			return reply(chatID, "Nicht bereit!")
		}
		groups, err := h.timetables.SeminarGroupIDs()
		if err != nil {
			return reply(chatID, "Seminargruppen konnten nicht geladen werden!")
		}
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(groups))
		for _, group := range groups {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(group, actionAddSeminarGroup+":"+group),
			))
		}
		return replyWithKeyboard(chatID, "Wähle deine Seminargruppe aus:", tgbotapi.NewInlineKeyboardMarkup(rows...))

	case "remove":
		if chat.State != StateReady {
			return reply(chatID, "Nicht bereit!")
		}
		exams, err := h.store.LoadSubscriber(chatID)
		if err != nil {
			h.log.WithError(err).WithChatID(chatID).Error("Benachrichtigungen konnten nicht geladen werden")
			return reply(chatID, "Benachrichtigungen konnten nicht geladen werden!")
		}
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(exams))
		for _, exam := range exams {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(exam.Key(), actionRemoveModule+":"+exam.Key()),
			))
		}
		return replyWithKeyboard(chatID, "Wähle eine Prüfung aus:", tgbotapi.NewInlineKeyboardMarkup(rows...))

	case "clear":
		if chat.State != StateReady {
			return reply(chatID, "Nicht bereit!")
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Bestätigen", actionClearModules+":"+clearConfirm),
			tgbotapi.NewInlineKeyboardButtonData("Abbrechen", actionClearModules+":CANCEL"),
		))
		return replyWithKeyboard(chatID, "Bestätige, Benarichtigungen für alle Prüfungen zu deaktivieren:", keyboard)

	case "cancel":
		if chat.State == StateReady {
			return reply(chatID, "Schon bereit!")
		}
		chat.SetReady()
		return reply(chatID, "Abgebrochen!")
	}

	return Response{}
}

// HandleCallback handles an inline keyboard button press. Presses that do
// not fit the chat's wizard state are ignored; they come from stale
// keyboards of an earlier, abandoned wizard run.
func (h *Handler) HandleCallback(ctx context.Context, chatID int64, data string) Response {
	chat := h.conversations.Load(chatID)

	action, param, ok := strings.Cut(data, ":")
	if !ok {
		return Response{}
	}

	switch action {
	case actionAddSeminarGroup:
		if chat.State != StateReady {
			return Response{}
		}
		chat.SetSeminarGroupID(param)

		modules, err := h.timetables.Modules(ctx, param)
		if err != nil {
			chat.SetReady()
			return Response{
				Messages:      []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Module konnten nicht geladen werden!")},
				DeleteTrigger: true,
			}
		}
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(modules)+1)
		for _, module := range modules {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(module.Name, actionAddModuleCode+":"+module.Code),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Anderes", actionAddModuleCode+":"+customModuleChoice),
		))
		resp := replyWithKeyboard(chatID, "Wähle ein Modul aus:", tgbotapi.NewInlineKeyboardMarkup(rows...))
		resp.DeleteTrigger = true
		return resp

	case actionAddModuleCode:
		if chat.State != StateSeminarGroupChosen {
			return Response{}
		}
		if param == customModuleChoice {
			return Response{
				Messages: []tgbotapi.Chattable{tgbotapi.NewMessage(chatID,
					"Gebe den Modulcode, genau wie er auf Campus Dual steht, ein: (z.B. 5CS-PT1-00)")},
				DeleteTrigger: true,
			}
		}
		chat.SetModuleCode(param)

		rows := make([][]tgbotapi.InlineKeyboardButton, 0, yearChoices)
		for i := 0; i < yearChoices; i++ {
			year := strconv.Itoa(time.Now().Year() + 1 - i)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(year, actionAddYear+":"+year),
			))
		}
		resp := replyWithKeyboard(chatID, "Wähle das Jahr aus:", tgbotapi.NewInlineKeyboardMarkup(rows...))
		resp.DeleteTrigger = true
		return resp

	case actionAddYear:
		if chat.State != StateModuleChosen {
			return Response{}
		}
		year, err := strconv.Atoi(param)
		if err != nil {
			return Response{}
		}
		chat.SetYear(year)

		keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Sommersemester", actionAddPeriod+":"+markalert.PeriodSummer),
			tgbotapi.NewInlineKeyboardButtonData("Wintersemester", actionAddPeriod+":"+markalert.PeriodWinter),
		))
		resp := replyWithKeyboard(chatID, "Wähle das Semester aus:", keyboard)
		resp.DeleteTrigger = true
		return resp

	case actionAddPeriod:
		if chat.State != StateYearChosen {
			return Response{}
		}
		exam := markalert.Exam{ModuleCode: chat.ModuleCode, Year: chat.Year, Period: param}
		chat.SetReady()

		resp := h.subscribe(chatID, exam)
		resp.DeleteTrigger = true
		return resp

	case actionRemoveModule:
		if chat.State != StateReady {
			return Response{}
		}
		resp := h.unsubscribe(chatID, param)
		resp.DeleteTrigger = true
		return resp

	case actionClearModules:
		if chat.State != StateReady {
			return Response{}
		}
		var resp Response
		if param == clearConfirm {
			if err := h.store.SaveSubscriber(chatID, nil); err != nil {
				h.log.WithError(err).WithChatID(chatID).Error("Benachrichtigungen konnten nicht gelöscht werden")
				resp = reply(chatID, "Benachrichtigungen konnten nicht gelöscht werden!")
			} else {
				resp = reply(chatID, "Benarichtigungen für alle Prüfungen deaktiviert!")
			}
		} else {
			resp = reply(chatID, "Abgebrochen!")
		}
		resp.DeleteTrigger = true
		return resp
	}

	return Response{}
}

// HandleText handles free text, which only matters while the wizard waits
// for a custom module code.
func (h *Handler) HandleText(ctx context.Context, chatID int64, text string) Response {
	chat := h.conversations.Load(chatID)
	if chat.State != StateSeminarGroupChosen {
		return Response{}
	}

	moduleCode := strings.TrimSpace(text)
	if !validate.ModuleCode(moduleCode) {
		return Response{
			Messages: []tgbotapi.Chattable{tgbotapi.NewMessage(chatID,
				"Ungültiger Modulcode! Gib erneut einen Modulcode ein:")},
			DeleteTrigger: true,
		}
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Bestätigen", actionAddModuleCode+":"+moduleCode),
		tgbotapi.NewInlineKeyboardButtonData("Abbrechen", actionAddModuleCode+":"+customModuleChoice),
	))
	resp := replyWithKeyboard(chatID, fmt.Sprintf("Bestätige das Modul %s auszuwählen:", moduleCode), keyboard)
	resp.DeleteTrigger = true
	return resp
}

func (h *Handler) subscribe(chatID int64, exam markalert.Exam) Response {
	exams, err := h.store.LoadSubscriber(chatID)
	if err == nil {
		exams = append(exams, exam)
		err = h.store.SaveSubscriber(chatID, exams)
	}
	if err != nil {
		h.log.WithError(err).WithChatID(chatID).Error("Benarichtigung konnte nicht gespeichert werden")
		return reply(chatID, "Benarichtigung konnte nicht gespeichert werden!")
	}
	return reply(chatID, fmt.Sprintf("Benarichtigungen für die Prüfung %s aktiviert.", exam.Key()))
}

func (h *Handler) unsubscribe(chatID int64, examKey string) Response {
	exams, err := h.store.LoadSubscriber(chatID)
	if err == nil {
		kept := exams[:0]
		for _, exam := range exams {
			if exam.Key() != examKey {
				kept = append(kept, exam)
			}
		}
		err = h.store.SaveSubscriber(chatID, kept)
	}
	if err != nil {
		h.log.WithError(err).WithChatID(chatID).Error("Benachrichtigung konnte nicht deaktiviert werden")
		return reply(chatID, "Benachrichtigung konnte nicht deaktiviert werden!")
	}
	return reply(chatID, fmt.Sprintf("Benarichtigungen für die Prüfung %s deaktiviert!", examKey))
}
