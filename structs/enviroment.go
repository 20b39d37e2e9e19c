package structs

type EnviromentModel struct {
	Database         database
	Redis            redis
	ConcurrentAmount int
	RabbitMQ         rabbitmq
	Log              log
	Email            email
	Server           server
	Router           router
}

type server struct {
	AppAPI   string
	Timezone string
}

type database struct {
	Client      string
	MaxIdle     uint
	MaxLifeTime string
	MaxOpenConn uint
	User        string
	Password    string
	Host        string
	Db          string
	Params      string
	Port        string
	LogEnable   int
}

type redis struct {
	Enable   int
	Addr     string
	Password string
	DB       int
	TTL      string
}

type rabbitmq struct {
	Domain string
	Name   string
}

type log struct {
	FileEnable     int
	ElkEnable      int
	ElkIndex       string
	ElkURL         string
	LogstashEnable int
	LogstashURL    string
	LogstashIndex  string
}

type email struct {
	APIUrl string
}

type router struct {
	Port int
}
