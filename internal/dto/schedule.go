package dto

// ── 预定模块 DTO ──

// CreateScheduleRequest 创建预定请求
// candidates 为换行分隔的候补日程文本（与原表单字段名保持一致）
type CreateScheduleRequest struct {
	ScheduleName string `form:"scheduleName" json:"scheduleName" binding:"required"`
	Memo         string `form:"memo"         json:"memo"`
	Candidates   string `form:"candidates"   json:"candidates"`
}

// EditScheduleRequest 编辑预定请求
// candidates 非空时仅追加新的候补日程，已有候补及其出欠历史不受影响
type EditScheduleRequest struct {
	ScheduleName string `form:"scheduleName" json:"scheduleName" binding:"required"`
	Memo         string `form:"memo"         json:"memo"`
	Candidates   string `form:"candidates"   json:"candidates"`
}

// UpdateAvailabilityRequest 出欠更新请求
type UpdateAvailabilityRequest struct {
	Availability int `form:"availability" json:"availability"`
}

// UpdateCommentRequest 留言更新请求
type UpdateCommentRequest struct {
	Comment string `form:"comment" json:"comment" binding:"required"`
}

// ── 响应 ──

// ScheduleResponse 预定响应
type ScheduleResponse struct {
	ID           string `json:"id"`
	ScheduleName string `json:"schedule_name"`
	Memo         string `json:"memo"`
	CreatedBy    int64  `json:"created_by"`
	UpdatedAt    string `json:"updated_at"`
}

// CandidateResponse 候补日程响应
type CandidateResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserResponse 参与者响应
// IsSelf 在整个列表中恰好为 true 一次（请求者本人）
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsSelf   bool   `json:"is_self"`
}

// ScheduleViewResponse 预定聚合视图响应
//
// AvailabilityMap 为 userID → (candidateID → 出欠编码) 的两级映射，
// 覆盖 用户 × 候补 的完整笛卡尔积：存储中缺行的组合显式补 0（欠席/未回答），
// 展示层无需对缺失数据做任何特判。
// CommentMap 为 userID → 留言文本。
type ScheduleViewResponse struct {
	Schedule        *ScheduleResponse       `json:"schedule"`
	Candidates      []CandidateResponse     `json:"candidates"`
	Users           []UserResponse          `json:"users"`
	AvailabilityMap map[int64]map[int64]int `json:"availability_map"`
	CommentMap      map[int64]string        `json:"comment_map"`
}

// NewScheduleFormResponse 创建表单渲染数据
type NewScheduleFormResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// EditScheduleFormResponse 编辑表单渲染数据
type EditScheduleFormResponse struct {
	Schedule   *ScheduleResponse   `json:"schedule"`
	Candidates []CandidateResponse `json:"candidates"`
	CSRFToken  string              `json:"csrf_token"`
}
