package client

import "context"

// Repository は顧客リポジトリのインターフェース
type Repository interface {
	// Create は新しい顧客を作成する。メールアドレスが重複する場合は ErrEmailAlreadyRegistered
	Create(ctx context.Context, c *Client) error

	// GetByID はIDから顧客を取得する
	GetByID(ctx context.Context, id string) (*Client, error)

	// GetByEmail はメールアドレスから顧客を取得する
	GetByEmail(ctx context.Context, email string) (*Client, error)

	// List は顧客一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Client, error)

	// ListByStatus は指定状態の顧客一覧を取得する
	ListByStatus(ctx context.Context, status Status) ([]*Client, error)

	// SearchByName は氏名の部分一致で顧客を検索する
	SearchByName(ctx context.Context, query string) ([]*Client, error)

	// Update は顧客を更新する。メールアドレスが重複する場合は ErrEmailAlreadyRegistered
	Update(ctx context.Context, c *Client) error
}
