package client

import (
	"strings"
	"time"
)

// Status は顧客の状態を表す
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Client は顧客エンティティを表す
// 顧客は物理削除せず、状態の切り替えで論理削除する
type Client struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Status       Status
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// NewClient は有効状態の顧客を作成する
func NewClient(firstName, lastName, email, phone string) *Client {
	now := time.Now()
	return &Client{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        NormalizeEmail(email),
		Phone:        strings.TrimSpace(phone),
		Status:       StatusActive,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail はメールアドレスを比較用に正規化する
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName は氏名を返す
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsActive は有効な顧客かを返す
func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}

// Activate は顧客を有効にする
func (c *Client) Activate() error {
	if c.Status == StatusActive {
		return ErrClientAlreadyActive
	}
	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate は顧客を無効にする
func (c *Client) Deactivate() error {
	if c.Status == StatusInactive {
		return ErrClientAlreadyInactive
	}
	c.Status = StatusInactive
	c.UpdatedAt = time.Now()
	return nil
}

// Patch は部分更新の入力を表す。nil の項目は変更しない
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

// Apply は部分更新を適用する
func (c *Client) Apply(p Patch) {
	if p.FirstName != nil {
		c.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		c.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Email != nil {
		c.Email = NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		c.Phone = strings.TrimSpace(*p.Phone)
	}
	c.UpdatedAt = time.Now()
}

// Validate は顧客の検証を行う
func (c *Client) Validate() error {
	if c.FirstName == "" {
		return ErrNameRequired
	}
	if c.Email == "" {
		return ErrEmailRequired
	}
	at := strings.Index(c.Email, "@")
	if at <= 0 || at == len(c.Email)-1 || strings.Count(c.Email, "@") != 1 {
		return ErrInvalidEmail
	}
	return nil
}
