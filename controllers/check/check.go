package check

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"nutrimatch-go-worker/services/rabbitmq"
	"nutrimatch-go-worker/services/trackLog"
	"nutrimatch-go-worker/utils"

	"github.com/gin-gonic/gin"
)

type AliveResponse struct {
	Success  bool      `json:"success"`
	Messsage string    `json:"message"`
	Info     CheckInfo `json:"info"`
}

type CheckInfo struct {
	Queues     []string `json:"queue"`
	RoutineNum int      `json:"routine_num"`
}

// CheckAlive inspects every consumed queue and reconnects when the broker
// connection was lost.
func CheckAlive(c *gin.Context) {
	name := ""
	if utils.EnvConfig != nil {
		name = utils.EnvConfig.RabbitMQ.Name
	}
	rabbitConn := rabbitmq.GetConnection(name)
	resMsg := "main thread alive"
	checkInfo := CheckInfo{}
	if rabbitConn != nil {
		if rabbitConn.Conn == nil || rabbitConn.Conn.IsClosed() {
			resMsg = "Api detect Connection lost, Reconnecting.."
			trackLog.Error(resMsg, false)
			if err := rabbitConn.Reconnect(); err != nil {
				resMsg = fmt.Sprintf("reconnect rabbit fail: %s", err.Error())
				trackLog.Error(resMsg, false)
			}
		}
		if rabbitConn.Channel != nil {
			for _, q := range rabbitConn.Queues {
				queue, queueErr := rabbitConn.Channel.QueueInspect(q)
				if queueErr != nil {
					resMsg = fmt.Sprintf("Queue[%s] error: %s", q, queueErr.Error())
					trackLog.Error(resMsg, false)
					continue
				}
				queueJson, _ := json.Marshal(queue)
				checkInfo.Queues = append(checkInfo.Queues, string(queueJson))
				trackLog.Info(fmt.Sprintf("Queue[%s]: %s", q, queueJson), false)
			}
		} else {
			resMsg = "Channel get fail"
			trackLog.Error(resMsg, false)
		}
		// give a pending close signal one second to arrive
		select {
		case err := <-rabbitConn.ApiErr:
			trackLog.Error(fmt.Sprintf("api error: %s", err.Error()), false)
			if err := rabbitConn.Reconnect(); err != nil {
				resMsg = fmt.Sprintf("reconnect rabbit fail: %s", err.Error())
				trackLog.Error(resMsg, false)
			}
		case <-time.After(time.Second):
		}
	} else {
		resMsg = "Get connection pool fail"
		trackLog.Error(resMsg, false)
	}

	checkInfo.RoutineNum = runtime.NumGoroutine()
	trackLog.Info(fmt.Sprintf("goroutine number: %d", checkInfo.RoutineNum), false)

	c.JSON(http.StatusOK, AliveResponse{true, resMsg, checkInfo})
}
