package router

import (
	"context"
	_ "embed"
	"errors"

	"talentscout-go/internal/api/handler"
	"talentscout-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

//go:embed static/index.html
var indexHTML []byte

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, candidateHandler *handler.CandidateHandler) {
	// 内嵌的单页表单，API的瘦客户端
	h.GET("/", func(c context.Context, ctx *app.RequestContext) {
		ctx.Data(consts.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	api := h.Group("/api/v1")

	// 生成面试题
	api.POST("/questions/generate", func(c context.Context, ctx *app.RequestContext) {
		var req handler.GenerateQuestionsRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		resp, err := candidateHandler.HandleGenerateQuestions(c, &req)
		if err != nil {
			var verr *handler.ValidationError
			if errors.As(err, &verr) {
				ctx.JSON(consts.StatusBadRequest, utils.H{"errors": verr.Errors})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 提交候选人记录
	api.POST("/candidates", func(c context.Context, ctx *app.RequestContext) {
		var req handler.SubmitCandidateRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		resp, err := candidateHandler.HandleSubmitCandidate(c, &req)
		if err != nil {
			var verr *handler.ValidationError
			if errors.As(err, &verr) {
				ctx.JSON(consts.StatusBadRequest, utils.H{"errors": verr.Errors})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		// 两端都失败是唯一向用户暴露的失败终态
		if resp.Outcome == string(types.SaveFailed) {
			ctx.JSON(consts.StatusInternalServerError, resp)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 候选人列表（远端存储）
	api.GET("/candidates", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, candidateHandler.HandleListCandidates(c))
	})

	// 添加健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
