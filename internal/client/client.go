package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	apiURL         = "%s/bot%s/%s"
)

// HTTPClient реализует Client через HTTP API Telegram.
type HTTPClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient создаёт нового HTTP клиента Telegram по переданному токену
func NewHTTPClient(token string) *HTTPClient {
	return &HTTPClient{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

// WithBaseURL подменяет адрес Bot API (локальный bot api сервер, тесты).
func (c *HTTPClient) WithBaseURL(url string) *HTTPClient {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

// GetUpdates получает обновления.
// Если новых обновлений нет, сервер ждёт до params.Timeout секунд.
// Для продолжения обработки нужно передать Offset = lastUpdateID + 1.
func (c *HTTPClient) GetUpdates(ctx context.Context, params GetUpdatesParams) ([]Update, error) {
	if params.Timeout < 0 {
		params.Timeout = 0
	}

	ctx, cancelFunc := context.WithTimeout(
		ctx,
		time.Duration(params.Timeout)*time.Second+timeoutPollGrace,
	)
	defer cancelFunc()

	rawResp, err := c.doRequest(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err = json.Unmarshal(rawResp, &updates); err != nil {
		return nil, &TransportError{
			Method: "getUpdates",
			Err:    fmt.Errorf("decode updates: %w", err),
		}
	}

	return updates, nil
}

// GetMe возвращает сведения о боте, которому принадлежит токен.
func (c *HTTPClient) GetMe(ctx context.Context) (*BotInfo, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	rawResp, err := c.doRequest(ctx, "getMe", struct{}{})
	if err != nil {
		return nil, err
	}

	var info BotInfo
	if err = json.Unmarshal(rawResp, &info); err != nil {
		return nil, &TransportError{
			Method: "getMe",
			Err:    fmt.Errorf("decode bot info: %w", err),
		}
	}

	return &info, nil
}

// SendMessage отправляет сообщение text в чат chatID.
// Возвращает указатель на структуру Message в случае успеха.
func (c *HTTPClient) SendMessage(
	ctx context.Context,
	chatID int64,
	text string,
	opts *SendOptions,
) (*Message, error) {
	params := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}

	if opts != nil {
		if opts.ParseMode != "" {
			params["parse_mode"] = opts.ParseMode
		}

		if opts.ReplyToMessageID != 0 {
			params["reply_to_message_id"] = opts.ReplyToMessageID
		}
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	rawResp, err := c.doRequest(ctx, "sendMessage", params)
	if err != nil {
		return nil, err
	}

	var message Message
	if err = json.Unmarshal(rawResp, &message); err != nil {
		return nil, &TransportError{
			Method: "sendMessage",
			Err:    fmt.Errorf("decode message: %w", err),
		}
	}

	return &message, nil
}

// AnswerCallback отвечает уведомлением в верхней части экрана чата на callback query
// с идентификатором callbackID.
// Возращает nil в случае успеха.
func (c *HTTPClient) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	params := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	_, err := c.doRequest(ctx, "answerCallbackQuery", params)
	return err
}

// doRequest выполняет запрос к Telegram API.
// Любая ошибка возвращается как *TransportError.
func (c *HTTPClient) doRequest(
	ctx context.Context,
	method string,
	params any,
) (json.RawMessage, error) {
	url := fmt.Sprintf(apiURL, c.baseURL, c.token, method)

	body, err := json.Marshal(params)
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("encode params: %w", err)}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &TransportError{Method: method, Err: redactToken(err, c.token)}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}

	var result struct {
		OK     bool            `json:"ok"`
		Result json.RawMessage `json:"result"`
		Error  string          `json:"description"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	if !result.OK {
		return nil, &TransportError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			Description: result.Error,
		}
	}

	return result.Result, nil
}

// redactToken убирает токен бота из текста ошибки: net/http кладёт в неё полный URL.
func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}

	return &redactedError{
		msg: strings.ReplaceAll(err.Error(), token, "<token>"),
		err: err,
	}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
