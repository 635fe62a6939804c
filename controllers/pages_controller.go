package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// About renders the static about page.
func About(ctx *gin.Context) {
	render(ctx, http.StatusOK, "pages/about.html", gin.H{"title": "About"})
}

// Rules renders the static rules page.
func Rules(ctx *gin.Context) {
	render(ctx, http.StatusOK, "pages/rules.html", gin.H{"title": "Rules"})
}

// Health is the liveness check.
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
