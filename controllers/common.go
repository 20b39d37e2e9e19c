package controllers

import (
	"net/http"
	"strconv"

	"nutrimatch-go-worker/structs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var statusByKind = map[string]int{
	structs.KindBadInput: http.StatusBadRequest,
	structs.KindNotFound: http.StatusNotFound,
	structs.KindConflict: http.StatusConflict,
	structs.KindInternal: http.StatusInternalServerError,
}

// PathID reads a positive integer path parameter. On failure it has already
// written a 400 response.
func PathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, structs.Response{Message: name + " must be a positive integer", ErrorKind: structs.KindBadInput})
		return 0, false
	}
	return id, true
}

// BindJSON decodes the request body; an empty body leaves v untouched.
func BindJSON(c *gin.Context, v interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, structs.Response{Message: "malformed body: " + err.Error(), ErrorKind: structs.KindBadInput})
		return false
	}
	return true
}

func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, structs.Response{Success: true, Message: "ok", Data: data})
}

// Fail maps err to its status. Internal errors are logged and their detail
// stays out of the response.
func Fail(c *gin.Context, log *logrus.Entry, err error) {
	kind := structs.ErrorKind(err)
	status := statusByKind[kind]
	message := err.Error()
	if kind == structs.KindInternal {
		log.WithFields(logrus.Fields{"path": c.FullPath(), "error_message": err.Error()}).Error("request failed")
		message = "internal error"
	}
	c.JSON(status, structs.Response{Message: message, ErrorKind: kind})
}
