// Package bot runs the Telegram front end: free-text fare queries in,
// formatted fare lists out.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/search"
)

const startText = "Привет! Я помогу найти авиабилеты.\n\n" +
	"Отправь запрос в формате:\n" +
	"`ГородA ГородB с 10 по 15 мая`\n" +
	"или\n" +
	"`ГородA ГородB на 5-10 дней`\n" +
	"Добавь «в одну сторону», если нужен только туда."

const helpText = "Пример запроса:\n" +
	"`Москва Питер с 12 по 18 июня`\n" +
	"или\n" +
	"`Париж Лондон на 3-5 дней в одну сторону`"

// Searcher is implemented by search.Service.
type Searcher interface {
	Search(ctx context.Context, query string) (*search.Outcome, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	service Searcher
}

func New(token string, service Searcher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:     api,
		service: service,
	}, nil
}

// Run polls for updates until ctx is canceled. Each message is
// handled in its own goroutine so one slow search does not block
// other chats.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("Authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.replyMarkdown(msg, startText)
		case "help":
			b.replyMarkdown(msg, helpText)
		}
		return
	}
	b.handleQuery(ctx, msg)
}

func (b *Bot) handleQuery(ctx context.Context, msg *tgbotapi.Message) {
	outcome, err := b.service.Search(ctx, msg.Text)
	if err != nil {
		b.reply(msg, errorText(err))
		return
	}
	if len(outcome.Fares) == 0 {
		b.reply(msg, "😞 Извините, рейсы не найдены.")
		return
	}
	b.reply(msg, FormatReply(outcome))
}

// errorText renders the error taxonomy as Russian chat messages.
// Input errors name what went wrong; anything operational is logged
// and answered with a generic message.
func errorText(err error) string {
	var malformed *models.MalformedQueryError
	var month *models.UnrecognizedMonthError
	var place *models.PlaceNotFoundError

	switch {
	case errors.As(err, &malformed):
		return "⚠️ Не понял запрос. Пример: «Москва Париж с 10 по 15 мая» или «Париж Лондон на 3-5 дней»."
	case errors.As(err, &month):
		return fmt.Sprintf("⚠️ Не удалось распознать месяц «%s».", month.Token)
	case errors.As(err, &place):
		return fmt.Sprintf("⚠️ Город «%s» не найден. Проверьте написание.", place.Term)
	default:
		log.Printf("Search failed: %v", err)
		return "❗ Произошла ошибка при поиске. Попробуйте позже."
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(out); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

func (b *Bot) replyMarkdown(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(out); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}
