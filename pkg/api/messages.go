package api

// User is the caller's own account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Profile is the public view of another user.
type Profile struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

type AddFriendRequest struct {
	// Handle may carry a leading "@".
	Handle string `json:"handle"`
}

type AddFriendResponse struct {
	Friend Profile `json:"friend"`
}

type ListFriendsResponse struct {
	Friends []Profile `json:"friends"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creator_id"`
	Members   []Profile `json:"members"`
	CreatedAt int64     `json:"created_at"`
}

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID   string   `json:"group_id"`
	MemberIDs []string `json:"member_ids"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type Item struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Cost  string `json:"cost"`
}

type Split struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Amount      string `json:"amount"`
	Paid        bool   `json:"paid"`
	PaidAt      int64  `json:"paid_at,omitempty"`
	PaidBy      string `json:"paid_by,omitempty"`
}

type Bill struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Total        string  `json:"total"`
	CreatorID    string  `json:"creator_id"`
	CreatorName  string  `json:"creator_name,omitempty"`
	CreatorShare string  `json:"creator_share"`
	GroupID      string  `json:"group_id,omitempty"`
	BillDate     int64   `json:"bill_date"`
	CreatedAt    int64   `json:"created_at"`
	Items        []Item  `json:"items,omitempty"`
	Splits       []Split `json:"splits"`
	PaidCount    int     `json:"paid_count"`
}

type CreateBillRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Total       string `json:"total"`

	// BillDate is a Unix timestamp; zero means now.
	BillDate int64  `json:"bill_date,omitempty"`
	GroupID  string `json:"group_id,omitempty"`

	ParticipantIDs []string `json:"participant_ids"`

	// Policy is "even" (default) or "custom".
	Policy        string            `json:"policy,omitempty"`
	CustomAmounts map[string]string `json:"custom_amounts,omitempty"`
	Items         []Item            `json:"items,omitempty"`
}

type BillResponse struct {
	Bill Bill `json:"bill"`
}

type PreviewSplitRequest struct {
	Total          string            `json:"total"`
	ParticipantIDs []string          `json:"participant_ids"`
	Policy         string            `json:"policy,omitempty"`
	CustomAmounts  map[string]string `json:"custom_amounts,omitempty"`
}

type PreviewSplitResponse struct {
	Splits       []Split `json:"splits"`
	CreatorShare string  `json:"creator_share"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type ListBillsResponse struct {
	Bills []Bill `json:"bills"`
}

type MarkPaidRequest struct {
	BillID string `json:"bill_id"`
	UserID string `json:"user_id"`
}

type MarkPaidResponse struct {
	Split Split `json:"split"`

	// Transitioned is false when the split was already paid.
	Transitioned bool `json:"transitioned"`
}

type Counterparty struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Amount      string `json:"amount"`
}

type Balances struct {
	TotalOwed  string         `json:"total_owed"`
	TotalOwing string         `json:"total_owing"`
	OwedBy     []Counterparty `json:"owed_by"`
	OwingTo    []Counterparty `json:"owing_to"`
}

type BalancesResponse struct {
	Balances Balances `json:"balances"`
}

type GetHistoryRequest struct {
	// Status is "all" (default), "paid" or "pending".
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

type HistoryStats struct {
	Total       int    `json:"total"`
	Paid        int    `json:"paid"`
	Pending     int    `json:"pending"`
	TotalAmount string `json:"total_amount"`
}

type HistoryResponse struct {
	Bills []Bill       `json:"bills"`
	Stats HistoryStats `json:"stats"`
}

type GetDashboardRequest struct {
	Recent int `json:"recent,omitempty"`
}

type DashboardResponse struct {
	Balances    Balances  `json:"balances"`
	Friends     []Profile `json:"friends"`
	Groups      []Group   `json:"groups"`
	RecentBills []Bill    `json:"recent_bills"`
	BillCount   int       `json:"bill_count"`
}
