// Package client 封装与后端 API 的 HTTP 通信。
package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	hertzclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/lvraikkonen/azure-calculator/internal/cli/types"
	"github.com/lvraikkonen/azure-calculator/internal/domain"
	"github.com/lvraikkonen/azure-calculator/internal/stream"
)

// APIClient 包装 Hertz Client 访问后端。
type APIClient struct {
	client *hertzclient.Client
	server string
	token  string
}

// NewAPIClient 创建 API 客户端。
func NewAPIClient(server, token string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("服务器地址不合法: %s", server))
	}

	// netpoll 对流式响应支持不好, 会 panic, 必须用标准库 dialer
	c, err := hertzclient.NewClient(
		hertzclient.WithDialTimeout(10*time.Second),
		hertzclient.WithMaxIdleConnDuration(60*time.Second),
		hertzclient.WithResponseBodyStream(true),
		hertzclient.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 客户端失败: %w", err)
	}

	return &APIClient{client: c, server: normalized, token: token}, nil
}

// normalizeServerURL 补全 scheme 并去掉路径与尾部斜杠。
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Login 用户登录。按后端要求用表单编码而不是 JSON。
func (c *APIClient) Login(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointLogin)
	req.Header.SetContentTypeBytes([]byte("application/x-www-form-urlencoded"))
	req.SetBodyString(form.Encode())

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, domain.NewTransportError(err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, apiError(resp)
	}

	var loginResp types.LoginResponse
	if err := sonic.Unmarshal(resp.Body(), &loginResp); err != nil {
		return nil, fmt.Errorf("解析登录响应失败: %w", err)
	}
	return &loginResp, nil
}

// SendMessage 非流式发送消息, 一次性返回完整回复。
func (c *APIClient) SendMessage(ctx context.Context, content, conversationID string) (*types.MessageResponse, error) {
	body, err := sonic.Marshal(types.NewMessageRequest(content, conversationID))
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointMessages)
	c.setAuthHeaders(req)
	req.SetBody(body)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, domain.NewTransportError(err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, apiError(resp)
	}

	var msgResp types.MessageResponse
	if err := sonic.Unmarshal(resp.Body(), &msgResp); err != nil {
		return nil, fmt.Errorf("解析消息响应失败: %w", err)
	}
	return &msgResp, nil
}

// Open 发起流式消息请求并返回原始响应体, 实现 stream.Transport。
// 响应体 Close 时释放底层请求与响应对象。
func (c *APIClient) Open(ctx context.Context, sreq stream.Request) (io.ReadCloser, error) {
	msg := types.NewMessageRequest(sreq.Content, sreq.ConversationID)
	msg.Context = sreq.Context
	body, err := sonic.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointMessagesStream)
	c.setAuthHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.SetBody(body)

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, domain.NewTransportError(err)
	}
	if resp.StatusCode() != consts.StatusOK {
		err := apiError(resp)
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, err
	}

	bodyStream := resp.BodyStream()
	if bodyStream == nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, domain.NewTransportError(fmt.Errorf("响应体为空"))
	}
	return &streamBody{r: bodyStream, req: req, resp: resp}, nil
}

// ListConversations 拉取对话列表。
func (c *APIClient) ListConversations(ctx context.Context) ([]types.ConversationSummary, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.server + endpointConversations)
	c.setAuthHeaders(req)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, domain.NewTransportError(err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, apiError(resp)
	}

	var list []types.ConversationSummary
	if err := sonic.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("解析对话列表失败: %w", err)
	}
	return list, nil
}

// GetConversation 拉取单个对话的完整历史。
func (c *APIClient) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(fmt.Sprintf("%s"+endpointConversationByID, c.server, id))
	c.setAuthHeaders(req)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, domain.NewTransportError(err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, apiError(resp)
	}

	var conv types.Conversation
	if err := sonic.Unmarshal(resp.Body(), &conv); err != nil {
		return nil, fmt.Errorf("解析对话失败: %w", err)
	}
	return &conv, nil
}

// RenameConversation 更新对话标题。
func (c *APIClient) RenameConversation(ctx context.Context, id, title string) error {
	body, err := sonic.Marshal(types.UpdateTitleRequest{Title: title})
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPatch)
	req.SetRequestURI(fmt.Sprintf("%s"+endpointConversationByID, c.server, id))
	c.setAuthHeaders(req)
	req.SetBody(body)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return domain.NewTransportError(err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return apiError(resp)
	}
	return nil
}

// DeleteConversation 删除对话。
func (c *APIClient) DeleteConversation(ctx context.Context, id string) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodDelete)
	req.SetRequestURI(fmt.Sprintf("%s"+endpointConversationByID, c.server, id))
	c.setAuthHeaders(req)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return domain.NewTransportError(err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return apiError(resp)
	}
	return nil
}

// SendFeedback 提交消息反馈。
func (c *APIClient) SendFeedback(ctx context.Context, fb types.FeedbackRequest) (*types.FeedbackResponse, error) {
	body, err := sonic.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointFeedback)
	c.setAuthHeaders(req)
	req.SetBody(body)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, domain.NewTransportError(err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, apiError(resp)
	}

	var fbResp types.FeedbackResponse
	if err := sonic.Unmarshal(resp.Body(), &fbResp); err != nil {
		return nil, fmt.Errorf("解析反馈响应失败: %w", err)
	}
	return &fbResp, nil
}

func (c *APIClient) setAuthHeaders(req *protocol.Request) {
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// apiError 把非 2xx 响应转成 APIError, 优先用响应体里的 detail。
func apiError(resp *protocol.Response) error {
	var body types.ErrorBody
	message := ""
	if err := sonic.Unmarshal(resp.Body(), &body); err == nil {
		message = body.Detail
	}
	if message == "" {
		message = fmt.Sprintf("请求失败: %d", resp.StatusCode())
	}
	return domain.NewAPIError(resp.StatusCode(), message)
}

// streamBody 包装流式响应体, Close 时归还请求与响应对象。
type streamBody struct {
	r    io.Reader
	req  *protocol.Request
	resp *protocol.Response
	once sync.Once
}

func (b *streamBody) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *streamBody) Close() error {
	b.once.Do(func() {
		protocol.ReleaseRequest(b.req)
		protocol.ReleaseResponse(b.resp)
	})
	return nil
}
