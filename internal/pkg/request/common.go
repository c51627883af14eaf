package request

// ByIDRequest binds the :id path parameter shared by most endpoints.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams binds the pagination query parameters shared by list endpoints.
type ListParams struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}
