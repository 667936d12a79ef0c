package team_sdk

import (
	"net/http"
	"strings"

	"github.com/cydxin/team-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 日历（CalendarSpace）相关接口 --------------------

// GinHandleListCalendars 全量日历目录
// @Summary 全量日历目录
// @Description 所有日历（含未加入的），按创建时间升序
// @Tags 日历
// @Produce json
// @Success 200 {object} response.Response{data=[]service.CalendarDTO} "查询成功"
// @Security BearerAuth
// @Router /calendar/list [get]
func (c *TeamEngine) GinHandleListCalendars(ctx *gin.Context) {
	cals, err := c.DirService.ListCalendars()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(cals))
}

// GinHandleListJoinedCalendars 已加入日历
// @Summary 已加入日历
// @Tags 日历
// @Produce json
// @Success 200 {object} response.Response{data=[]service.CalendarDTO} "查询成功"
// @Security BearerAuth
// @Router /calendar/joined [get]
func (c *TeamEngine) GinHandleListJoinedCalendars(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	cals, err := c.MemberService.ListJoinedCalendars(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(cals))
}

// GinHandleCreateCalendar 创建日历
// @Summary 创建日历
// @Description 管理员创建日历并自动加入，name/open_code 必填
// @Tags 日历
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.CalendarDTO} "创建成功"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /calendar/create [post]
func (c *TeamEngine) GinHandleCreateCalendar(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		OpenCode string `json:"open_code"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	cal, err := c.DirService.CreateCalendar(uid, req.Name, req.OpenCode)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(cal))
}

// GinHandleDeleteCalendar 删除日历
// @Summary 删除日历
// @Description 管理员删除日历，成员关系/日程/事件级联删除
// @Tags 日历
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "删除成功"
// @Security BearerAuth
// @Router /calendar/delete [post]
func (c *TeamEngine) GinHandleDeleteCalendar(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		CalendarID string `json:"calendar_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.DirService.DeleteCalendar(uid, req.CalendarID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleJoinCalendar 口令加入日历
// @Summary 口令加入日历
// @Description 按口令解析日历并加入。无匹配返回 10004，重复加入返回 10005
// @Tags 日历
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.CalendarDTO} "加入成功"
// @Security BearerAuth
// @Router /calendar/join [post]
func (c *TeamEngine) GinHandleJoinCalendar(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	cal, err := c.MemberService.JoinCalendarByCode(uid, req.Code)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(cal))
}

// GinHandleListSchedules 日历日程
// @Summary 日历日程
// @Description 全部日程按日期升序；带 date(YYYY-MM-DD) 时只取当天
// @Tags 日历
// @Produce json
// @Param calendar_id query string true "日历 ID"
// @Param date query string false "YYYY-MM-DD，只取当天"
// @Success 200 {object} response.Response{data=[]service.ScheduleDTO} "查询成功"
// @Security BearerAuth
// @Router /calendar/schedules [get]
func (c *TeamEngine) GinHandleListSchedules(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	calendarID := strings.TrimSpace(ctx.Query("calendar_id"))
	if calendarID == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "calendar_id is required"))
		return
	}

	joined, err := c.MemberService.IsCalendarMember(calendarID, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if !joined {
		ctx.JSON(http.StatusOK, response.Error(response.CodePermissionDeny, "not a calendar member"))
		return
	}

	if date := strings.TrimSpace(ctx.Query("date")); date != "" {
		items, err := c.ScheduleService.ListOn(calendarID, date)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(items))
		return
	}

	items, err := c.ScheduleService.List(calendarID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(items))
}

// GinHandleAddSchedule 添加日程
// @Summary 添加日程
// @Description 管理员添加日程。标题/日期 trim 后为空静默忽略；日期须为 YYYY-MM-DD
// @Tags 日历
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.ScheduleDTO} "添加成功"
// @Security BearerAuth
// @Router /calendar/schedule/add [post]
func (c *TeamEngine) GinHandleAddSchedule(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		CalendarID  string `json:"calendar_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Date        string `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	item, err := c.ScheduleService.Add(uid, req.CalendarID, req.Title, req.Description, req.Date)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(item))
}

// GinHandleDeleteSchedule 删除日程
// @Summary 删除日程
// @Description 管理员删除日程
// @Tags 日历
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "删除成功"
// @Security BearerAuth
// @Router /calendar/schedule/delete [post]
func (c *TeamEngine) GinHandleDeleteSchedule(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		ScheduleID string `json:"schedule_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.ScheduleService.Delete(uid, req.ScheduleID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
