package mq

// Mode selects the queue backend at startup.
type Mode string

const (
	ModeGoChan    Mode = "go_chan"
	ModeRabbitMQ  Mode = "rabbitmq"
	ModeGCPPubSub Mode = "gcp_pub_sub"
)
