package common

import (
	"errors"
	"fmt"

	"dotabot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool   // Whether the error message should be ephemeral
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, transport, unexpected state)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// Classify turns a service error into the one message the user sees.
// Expected outcomes log at info, failures at error.
func Classify(err error) *BotError {
	var (
		botErr    *BotError
		claimed   *service.AlreadyClaimedError
		transport *service.TransportError
		writeErr  *service.LedgerWriteError
	)
	switch {
	case errors.As(err, &botErr):
		return botErr
	case errors.As(err, &claimed):
		return NewUserError(
			fmt.Sprintf("you've already claimed your daily. Try again in %s.", FormatRemaining(claimed.Remaining)),
			"daily already claimed",
		)
	case errors.Is(err, service.ErrWagerExpired):
		return &BotError{UserMessage: "You took too long to respond.", LogMessage: "wager expired"}
	case errors.Is(err, service.ErrContentUnavailable):
		return &BotError{UserMessage: "No trivia available right now. Try again later.", LogMessage: "content unavailable", Err: err}
	case errors.Is(err, service.ErrTriviaDisabled):
		return &BotError{UserMessage: "Trivia is currently unimplemented.", LogMessage: "trivia disabled"}
	case errors.As(err, &writeErr):
		return NewSystemError(err, "ledger write failed")
	case errors.As(err, &transport):
		return NewSystemError(err, "transport error")
	default:
		return NewSystemError(err, "unexpected error")
	}
}

// IsExpected reports whether err is a normal outcome rather than a failure
func IsExpected(err error) bool {
	var (
		botErr  *BotError
		claimed *service.AlreadyClaimedError
	)
	if errors.As(err, &botErr) {
		return botErr.Err == nil
	}
	return errors.As(err, &claimed) ||
		errors.Is(err, service.ErrWagerExpired) ||
		errors.Is(err, service.ErrContentUnavailable) ||
		errors.Is(err, service.ErrTriviaDisabled)
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and answers the interaction with its user message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	botErr := Classify(err)

	entry := log.WithFields(log.Fields{
		"guild_id": i.GuildID,
		"user_id":  InteractionUserID(i),
		"command":  i.ApplicationCommandData().Name,
		"error":    err.Error(),
	})
	if IsExpected(err) {
		entry.Info(botErr.LogMessage)
	} else {
		entry.Error(botErr.LogMessage)
	}

	if deferred {
		FollowUpWithError(s, i, botErr.UserMessage)
	} else {
		RespondWithError(s, i, botErr.UserMessage)
	}
}
