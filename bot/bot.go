// Package bot serves the console screens to the admin Telegram chat
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hrms-console/internal/export"
	"hrms-console/internal/models"
	"hrms-console/internal/services"
)

const (
	maxListRows = 25

	callbackConfirmDelete = "delete:confirm"
	callbackCancelDelete  = "delete:cancel"
)

var errUsage = errors.New("usage")

// sender is the part of *tgbotapi.BotAPI used to talk to chats
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Screens are the console screens the bot reads and drives
type Screens struct {
	Employees  *services.EmployeesScreen
	Attendance *services.AttendanceScreen
	Dashboard  *services.DashboardScreen
}

// Bot answers commands from the authorized chat using the shared screens
type Bot struct {
	api    *tgbotapi.BotAPI
	out    sender
	chatID int64

	Screens
}

// reply is what a command produces; empty text sends nothing
type reply struct {
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
	document *tgbotapi.FileBytes
}

// New connects to Telegram. authorizedChatID is required: only that chat is served.
func New(token, authorizedChatID string) (*Bot, error) {
	chatID, err := strconv.ParseInt(strings.TrimSpace(authorizedChatID), 10, 64)
	if err != nil || chatID == 0 {
		return nil, fmt.Errorf("invalid AUTHORIZED_CHAT_ID %q", authorizedChatID)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{api: api, out: api, chatID: chatID}, nil
}

// Notifier returns a notifier that posts to the admin chat
func (b *Bot) Notifier() *Notifier {
	return NewNotifier(b.out, b.chatID)
}

// Run serves screens, polling for updates until ctx is done
func (b *Bot) Run(ctx context.Context, screens Screens) {
	b.Screens = screens
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("👋 Bot polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if query := update.CallbackQuery; query != nil {
		if query.Message == nil || query.Message.Chat.ID != b.chatID {
			return
		}
		b.out.Request(tgbotapi.NewCallback(query.ID, "OK"))
		b.send(b.chatID, b.handleCallback(ctx, query.Data))
		return
	}

	message := update.Message
	if message == nil || !message.IsCommand() {
		return
	}
	if message.Command() == "getid" {
		b.send(message.Chat.ID, reply{text: fmt.Sprintf("Chat ID: `%d`", message.Chat.ID)})
		return
	}
	if message.Chat.ID != b.chatID {
		log.Printf("⚠️  Ignoring /%s from unauthorized chat %d", message.Command(), message.Chat.ID)
		return
	}

	log.Printf("🔍 /%s %s", message.Command(), message.CommandArguments())
	b.send(message.Chat.ID, b.handleCommand(ctx, message.Command(), message.CommandArguments()))
}

func (b *Bot) send(chatID int64, r reply) {
	var c tgbotapi.Chattable
	switch {
	case r.document != nil:
		doc := tgbotapi.NewDocument(chatID, *r.document)
		doc.Caption = r.text
		c = doc
	case r.text != "":
		msg := tgbotapi.NewMessage(chatID, r.text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if r.keyboard != nil {
			msg.ReplyMarkup = *r.keyboard
		}
		c = msg
	default:
		return
	}
	if _, err := b.out.Send(c); err != nil {
		log.Printf("Bot send error: %v", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, command, args string) reply {
	switch command {
	case "start", "help":
		return reply{text: helpText}
	case "dashboard":
		return b.handleDashboard(ctx)
	case "employees":
		return b.handleEmployees(ctx, args)
	case "add":
		return b.handleAdd(ctx, args)
	case "delete":
		return b.handleDelete(ctx, args)
	case "attendance":
		return b.handleAttendance(ctx, args)
	case "mark":
		return b.handleMark(ctx, args)
	case "refresh":
		return b.handleRefresh(ctx)
	case "export":
		return b.handleExport(ctx)
	default:
		return reply{text: "Unknown command. Use /start"}
	}
}

const helpText = "🏢 *HRMS Console*\n\n" +
	"*Commands:*\n" +
	"/dashboard - overview\n" +
	"/employees [query] - directory\n" +
	"/add code|full name|email|department - add employee\n" +
	"/delete <id> - remove employee\n" +
	"/attendance [all|id] [search] - history\n" +
	"/mark <id> <Present|Absent> [YYYY-MM-DD] - mark attendance\n" +
	"/refresh - reload data\n" +
	"/export - attendance spreadsheet"

func (b *Bot) handleDashboard(ctx context.Context) reply {
	b.Dashboard.EnsureLoaded(ctx)
	return reply{text: formatDashboard(b.Dashboard.View())}
}

func (b *Bot) handleEmployees(ctx context.Context, args string) reply {
	b.Employees.SetQuery(strings.TrimSpace(args))
	b.Employees.EnsureLoaded(ctx)
	return reply{text: formatEmployees(b.Employees.View())}
}

func (b *Bot) handleAdd(ctx context.Context, args string) reply {
	form, err := parseAddArgs(args)
	if err != nil {
		return reply{text: "Usage: `/add <code>|<full name>|<email>|<department>`"}
	}
	b.Employees.SetForm(form)
	if err := b.Employees.Create(ctx); err != nil {
		return failureReply(err)
	}
	v := b.Employees.View()
	return reply{text: fmt.Sprintf("👥 Directory now has %d employees", v.Total)}
}

func (b *Bot) handleDelete(ctx context.Context, args string) reply {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return reply{text: "Usage: `/delete <id>`"}
	}
	b.Employees.EnsureLoaded(ctx)
	prompt := b.Employees.RequestDelete(id)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Confirm", callbackConfirmDelete),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackCancelDelete),
		),
	)
	return reply{text: "⚠️ " + escape(prompt.Message), keyboard: &keyboard}
}

func (b *Bot) handleCallback(ctx context.Context, data string) reply {
	switch data {
	case callbackConfirmDelete:
		if err := b.Employees.ConfirmDelete(ctx); err != nil {
			return failureReply(err)
		}
		return reply{}
	case callbackCancelDelete:
		b.Employees.CancelDelete()
		return reply{text: "Deletion cancelled"}
	default:
		return reply{}
	}
}

func (b *Bot) handleAttendance(ctx context.Context, args string) reply {
	selected, search := parseAttendanceArgs(args)
	b.Attendance.SetSelectedEmployee(selected)
	b.Attendance.SetHistorySearch(search)
	b.Attendance.EnsureLoaded(ctx)
	return reply{text: formatHistory(b.Attendance.View())}
}

func (b *Bot) handleMark(ctx context.Context, args string) reply {
	form, err := parseMarkArgs(args, b.Attendance.Form())
	if err != nil {
		return reply{text: "Usage: `/mark <id> <Present|Absent> [YYYY-MM-DD]`"}
	}
	b.Attendance.SetForm(form)
	if err := b.Attendance.Mark(ctx); err != nil {
		return failureReply(err)
	}
	return reply{}
}

func (b *Bot) handleRefresh(ctx context.Context) reply {
	refreshes := []struct {
		name string
		run  func(context.Context) error
	}{
		{"dashboard", b.Dashboard.Refresh},
		{"employees", b.Employees.Refresh},
		{"attendance", b.Attendance.Refresh},
	}

	var failed []string
	for _, r := range refreshes {
		if err := r.run(ctx); err != nil {
			log.Printf("❌ Refresh %s failed: %v", r.name, err)
			failed = append(failed, r.name)
		}
	}
	if len(failed) > 0 {
		return reply{text: "⚠️ Refresh failed: " + strings.Join(failed, ", ")}
	}
	return reply{text: "🔄 Data reloaded"}
}

func (b *Bot) handleExport(ctx context.Context) reply {
	if err := b.Attendance.EnsureLoaded(ctx); err != nil {
		return reply{text: "⚠️ " + b.Attendance.View().Error}
	}
	rows := b.Attendance.History()
	f, err := export.AttendanceWorkbook(rows)
	if err != nil {
		log.Printf("❌ Export failed: %v", err)
		return reply{text: "⚠️ Failed to build export"}
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Printf("❌ Export failed: %v", err)
		return reply{text: "⚠️ Failed to build export"}
	}
	return reply{
		text:     fmt.Sprintf("%d attendance records", len(rows)),
		document: &tgbotapi.FileBytes{Name: export.Filename(time.Now()), Bytes: buf.Bytes()},
	}
}

// failureReply answers errors the notifier has not already reported
func failureReply(err error) reply {
	var notice *services.NoticeError
	if errors.As(err, &notice) {
		return reply{}
	}
	return reply{text: "⚠️ " + err.Error()}
}

func parseAddArgs(args string) (services.EmployeeForm, error) {
	parts := strings.Split(args, "|")
	if len(parts) != 4 {
		return services.EmployeeForm{}, errUsage
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return services.EmployeeForm{
		EmployeeID: parts[0],
		FullName:   parts[1],
		Email:      parts[2],
		Department: parts[3],
	}, nil
}

// parseMarkArgs reads "<id> <status> [date]"; date falls back to the current form's
func parseMarkArgs(args string, current services.AttendanceForm) (services.AttendanceForm, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return current, errUsage
	}
	form := services.AttendanceForm{EmployeeID: fields[0], Date: current.Date, Status: fields[1]}
	for _, s := range []models.Status{models.StatusPresent, models.StatusAbsent} {
		if strings.EqualFold(fields[1], string(s)) {
			form.Status = string(s)
		}
	}
	if len(fields) == 3 {
		form.Date = fields[2]
	}
	return form, nil
}

// parseAttendanceArgs reads "[all|<id>] [search...]"
func parseAttendanceArgs(args string) (selected, search string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return services.SelectAll, ""
	}
	if fields[0] == services.SelectAll {
		return services.SelectAll, strings.Join(fields[1:], " ")
	}
	if _, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
		return fields[0], strings.Join(fields[1:], " ")
	}
	return services.SelectAll, strings.Join(fields, " ")
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatDashboard(v services.DashboardView) string {
	if v.Error != "" {
		return "⚠️ " + v.Error
	}
	var sb strings.Builder
	sb.WriteString("📊 *Overview*\n")
	fmt.Fprintf(&sb, "Employees: %d\nPresent today: %d\nDepartments: %d\n",
		v.Stats.TotalEmployees, v.Stats.PresentToday, v.Stats.Departments)
	if len(v.Recent) == 0 {
		sb.WriteString("\nNo recent activity")
		return sb.String()
	}
	sb.WriteString("\n*Recent activity*\n")
	for _, row := range v.Recent {
		fmt.Fprintf(&sb, "%s %s (%s): %s\n", row.Record.Date, escape(row.Employee.FullName),
			escape(row.Employee.Department), row.Record.Status)
	}
	return sb.String()
}

func formatEmployees(v services.EmployeesView) string {
	if v.Error != "" {
		return "⚠️ " + v.Error
	}
	if len(v.Employees) == 0 {
		if v.Query != "" {
			return fmt.Sprintf("No employees match %q", v.Query)
		}
		return "No employees yet. Use /add"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 *Employees* (%d of %d)\n", len(v.Employees), v.Total)
	for i, e := range v.Employees {
		if i == maxListRows {
			fmt.Fprintf(&sb, "… and %d more", len(v.Employees)-maxListRows)
			break
		}
		fmt.Fprintf(&sb, "%d. %s %s, %s (%s)\n", e.ID, escape(e.EmployeeID), escape(e.FullName),
			escape(e.Department), escape(e.Email))
	}
	return sb.String()
}

func formatHistory(v services.AttendanceView) string {
	if v.Error != "" {
		return "⚠️ " + v.Error
	}
	if len(v.History) == 0 {
		return "No attendance records found"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *History* (%d)\n", len(v.History))
	for i, row := range v.History {
		if i == maxListRows {
			fmt.Fprintf(&sb, "… and %d more", len(v.History)-maxListRows)
			break
		}
		fmt.Fprintf(&sb, "%s %s %s: %s\n", row.Record.Date, escape(row.Employee.EmployeeID),
			escape(row.Employee.FullName), row.Record.Status)
	}
	return sb.String()
}
