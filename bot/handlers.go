package bot

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/ariesbot/aries/core/buildinfo"
	coretelegram "github.com/ariesbot/aries/core/telegram"
	"github.com/ariesbot/aries/core/telegram/callbacks"
	"github.com/ariesbot/aries/core/telegram/commands"
	tghelpers "github.com/ariesbot/aries/core/telegram/helpers"
	"github.com/ariesbot/aries/core/telegram/keyboard"
	"github.com/ariesbot/aries/pagination"
	"github.com/ariesbot/aries/storage"

	tele "gopkg.in/telebot.v4"
)

const helpIntro = "I was designed to give you quick and easy access to information about anime and manga.\nPick a topic you need help understanding."

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Get help about this bot",
	})
	reg.RegisterCommand("/about", commands.Command{
		Handler:     a.handleAbout,
		Description: "Get information about the bot",
	})
	reg.RegisterCommand("/id", commands.Command{
		Handler:     a.handleID,
		Description: "Show your user and chat ids",
		Hidden:      true,
	})
	reg.RegisterCommand("/language", commands.Command{
		Handler:     a.handleLanguage,
		Description: "Choose your preferred title language",
	})

	reg.RegisterCommand("/anime", commands.Command{
		Handler:     a.browseHandler(pagination.CategoryAnime),
		Description: "Get information about an anime",
	})
	reg.RegisterCommand("/manga", commands.Command{
		Handler:     a.browseHandler(pagination.CategoryManga),
		Description: "Get information about a manga",
	})
	reg.RegisterCommand("/character", commands.Command{
		Handler:     a.browseHandler(pagination.CategoryCharacter),
		Description: "Get information about a character",
	})

	reg.RegisterCommand("/cache", commands.Command{
		Handler:     a.handleCacheDump,
		Description: "Dump the in-memory browsing state",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.ReplyText(c, "Use /help to get a list of commands")
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	for _, cat := range pagination.Categories() {
		_ = reg.RegisterCallback(string(cat), a.navigateHandler(cat))
	}
	_ = reg.RegisterCallback("help", a.handleHelpTopic)
	_ = reg.RegisterCallback("lang", a.handleLanguagePick)
}

func (a *App) session(c tele.Context, cat pagination.Category, lang pagination.Language) Session {
	sess := Session{
		Category: cat,
		Language: lang,
	}
	if u := c.Sender(); u != nil {
		sess.UserID = u.ID
	}
	if chat := c.Chat(); chat != nil {
		sess.ChatID = chat.ID
	}
	if msg := c.Message(); msg != nil {
		sess.MessageID = msg.ID
	}
	return sess
}

func (a *App) browseHandler(cat pagination.Category) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		lang, err := a.store.Language(ctx, c.Sender().ID)
		if err != nil {
			return err
		}
		identifier := strings.Join(c.Args(), " ")
		return a.nav.StartQuery(ctx, a.session(c, cat, lang), identifier)
	}
}

func (a *App) navigateHandler(cat pagination.Category) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		return a.nav.Navigate(ctx, a.session(c, cat, pagination.LanguageEnglish), callbacks.CallbackPayload(c))
	}
}

func (a *App) handleStart(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	lang, err := a.store.Language(ctx, user.ID)
	if err != nil {
		return err
	}

	botName := c.Bot().(*tele.Bot).Me.Username
	var text string
	switch lang {
	case pagination.LanguageRomaji:
		text = fmt.Sprintf("Hajimemashite %s!\nWatashi wa %s desu.\nUse the help command (/help) to view the guide", user.FirstName, botName)
	case pagination.LanguageJapanese:
		text = fmt.Sprintf("はじめまして %s!\nわたしは %s です。\nUse the help command (/help) to open the guide.", user.FirstName, botName)
	default:
		text = fmt.Sprintf("Welcome %s!\nI am %s\nUse the help command (/help) to view the guide", user.FirstName, botName)
	}
	return tghelpers.ReplyText(c, text)
}

func helpKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "Anime", Unique: "help", Data: "anime"},
			{Text: "Characters", Unique: "help", Data: "character"},
			{Text: "Manga", Unique: "help", Data: "manga"},
		},
		[]keyboard.InlineBtn{
			{Text: "About", Unique: "help", Data: "about"},
		},
	)
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendHTML(c, helpIntro, helpKeyboard())
}

func (a *App) handleHelpTopic(c tele.Context) error {
	var text string
	switch callbacks.CallbackPayload(c) {
	case "anime":
		text = "Use the /anime command to request anime data\n\n/anime <anime title>\n\nFor example: /anime Awesome Anime"
	case "character":
		text = "Use the /character command to request character data\n\n/character <character name>\n\nFor example: /character Cool Character"
	case "manga":
		text = "Use the /manga command to request manga data\n\n/manga <manga title>\n\nFor example: /manga Mid Manga"
	case "about":
		text = "Get information about this bot\n\n/about"
	default:
		text = helpIntro
	}

	// Telegram rejects edits that change nothing.
	if msg := c.Message(); msg != nil && msg.Text == text {
		return nil
	}
	return c.Edit(text, helpKeyboard())
}

func (a *App) handleAbout(c tele.Context) error {
	me := c.Bot().(*tele.Bot).Me
	text := fmt.Sprintf(
		"This bot answers anime, manga, and character queries using the "+
			"<a href='https://anilist.co' title='AniList'>AniList</a> API.\n\n"+
			"Bot name: %s\nBot handle: @%s\nVersion: %s\n\n"+
			"Licensed under the <a href='https://opensource.org/license/mit' title='MIT License'>MIT</a> license",
		me.FirstName, me.Username, buildinfo.Version,
	)
	return tghelpers.SendHTML(c, text)
}

func (a *App) handleID(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return tghelpers.ReplyText(c, "You do not have a user id")
	}
	text := fmt.Sprintf("Your id is %d\nThe chat id is %d", user.ID, c.Chat().ID)
	return tghelpers.ReplyText(c, text)
}

func (a *App) handleLanguage(c tele.Context) error {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "English", Unique: "lang", Data: strconv.Itoa(int(pagination.LanguageEnglish))},
		{Text: "Romaji", Unique: "lang", Data: strconv.Itoa(int(pagination.LanguageRomaji))},
		{Text: "Japanese", Unique: "lang", Data: strconv.Itoa(int(pagination.LanguageJapanese))},
	})
	return tghelpers.SendHTML(c, "Pick the language titles and names should be listed in first", markup)
}

func (a *App) handleLanguagePick(c tele.Context) error {
	raw, err := strconv.Atoi(callbacks.CallbackPayload(c))
	if err != nil {
		return nil
	}
	lang := pagination.ParseLanguage(raw)

	ctx := tghelpers.BuildContext(c)
	if err := a.store.SetLanguage(ctx, c.Sender().ID, lang); err != nil {
		return err
	}
	return c.Edit(fmt.Sprintf("Language preference saved: %s", lang))
}

func (a *App) handleCacheDump(c tele.Context) error {
	text, err := cacheDump(a.states.Snapshot())
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, text)
}

// cacheDump renders the state snapshot as a <pre> block. Stored queries
// are user input, so the JSON is escaped before it meets the HTML parser.
func cacheDump(snapshot map[string]storage.State) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<pre>%s</pre>", html.EscapeString(string(data))), nil
}
