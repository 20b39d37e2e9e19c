package utils

import (
	"fmt"
	"strings"

	"nutrimatch-go-worker/structs"

	"github.com/spf13/viper"
)

var EnvConfig *structs.EnviromentModel

type EnvService struct{}

func (e *EnvService) InitEnv() {
	e.loadConfig()
	e.configToModel()
}

func (e *EnvService) loadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.SetDefault("concurrentAmount", 4)
	viper.SetDefault("router.port", 8080)
	viper.SetDefault("server.timezone", "UTC")
	viper.SetDefault("rabbitmq.name", "nutrimatch")
	viper.SetDefault("redis.ttl", "10m")
	viper.SetDefault("log.file.enable", 1)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {

			// no config.yml, fall back to environment variables
			viper.AutomaticEnv()
			viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		} else {
			panic(fmt.Errorf("Fatal error config file: %s \n", err))
		}
	}
}

func (e *EnvService) configToModel() {
	var config structs.EnviromentModel
	config.Database.Client = viper.GetString("database.client")
	config.Database.Host = viper.GetString("database.host")
	config.Database.User = viper.GetString("database.user")
	config.Database.Password = viper.GetString("database.password")
	config.Database.Db = viper.GetString("database.name")
	config.Database.MaxIdle = uint(viper.GetInt("database.max_idle"))
	config.Database.MaxOpenConn = uint(viper.GetInt("database.max_open_conn"))
	config.Database.MaxLifeTime = viper.GetString("database.max_life_time")
	config.Database.Params = viper.GetString("database.params")
	config.Database.Port = viper.GetString("database.port")
	config.Database.LogEnable = viper.GetInt("database.log_enable")
	config.Redis.Enable = viper.GetInt("redis.enable")
	config.Redis.Addr = viper.GetString("redis.addr")
	config.Redis.Password = viper.GetString("redis.password")
	config.Redis.DB = viper.GetInt("redis.db")
	config.Redis.TTL = viper.GetString("redis.ttl")
	config.ConcurrentAmount = viper.GetInt("concurrentAmount")
	config.RabbitMQ.Domain = viper.GetString("rabbitmq.domain")
	config.RabbitMQ.Name = viper.GetString("rabbitmq.name")
	config.Log.FileEnable = viper.GetInt("log.file.enable")
	config.Log.ElkEnable = viper.GetInt("log.elk.enable")
	config.Log.ElkIndex = viper.GetString("log.elk.index")
	config.Log.ElkURL = viper.GetString("log.elk.url")
	config.Log.LogstashEnable = viper.GetInt("log.logstash.enable")
	config.Log.LogstashURL = viper.GetString("log.logstash.url")
	config.Log.LogstashIndex = viper.GetString("log.logstash.index")
	config.Email.APIUrl = viper.GetString("email.api_url")
	config.Server.AppAPI = viper.GetString("server.app_api")
	config.Server.Timezone = viper.GetString("server.timezone")
	config.Router.Port = viper.GetInt("router.port")
	EnvConfig = &config
}
