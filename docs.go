// Package team_sdk 提供团队协作 SDK 核心能力
// @title Team SDK API
// @version 1.0
// @description 团队协作 SDK 的 RESTful API 文档，包含登录、聊天房间、共享日历、公告板等模块
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 通行码错误 |
// @description | 10003 | 账号不存在 |
// @description | 10004 | 加入口令无匹配 |
// @description | 10005 | 重复加入 |
// @description | 10006 | Token 无效 |
// @description | 10007 | 权限不足 |
// @description | 10008 | 房间/日历/公告不存在 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码说明
// @description - **200**: 业务请求成功（根据 response.code 判断业务状态）
// @description - **401**: 认证失败（未登录/Token 无效）
// @description - **500**: 服务器内部错误
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @termsOfService https://github.com/cydxin/team-sdk
//
// @contact.name API Support
// @contact.url https://github.com/cydxin/team-sdk/issues
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description 用于 WebSocket 等无法传 header 的场景
package team_sdk
