package main

import (
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/logger"
	"github.com/haojie06/dreamina-http/internal/server"
	"github.com/spf13/viper"
)

func main() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
	var dreaminaConfig dreamina.DreaminaServiceConfig
	if err := viper.UnmarshalKey("dreamina", &dreaminaConfig); err != nil {
		panic(err)
	}
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", "9000")
	host := viper.GetString("server.host")
	port := viper.GetString("server.port")
	logger.Infof("service is starting, host: %s, port: %s", host, port)
	dreamina.DreaminaServiceApp.Start(dreaminaConfig)
	server.Start(host, port)
}
