// SPDX-License-Identifier: MIT

// provernetd runs the settlement + claim engine behind the REST API.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"provernet-core/config"
	"provernet-core/core"
	"provernet-core/node"
	"provernet-core/rpc"
)

func main() {
	envCfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	engineCfg, err := core.LoadConfig(envCfg.ConfigPath)
	if err != nil {
		panic(err)
	}
	if envCfg.GenesisPath != "" {
		engineCfg.Node.GenesisFile = envCfg.GenesisPath
	}
	if envCfg.DataDir != "" {
		engineCfg.Node.DataDir = envCfg.DataDir
	}
	// The local proposer identity doubles as the trusted caller when no
	// explicit proposer is configured.
	if engineCfg.Engine.TrustedProposer == "" {
		engineCfg.Engine.TrustedProposer = envCfg.ProposerAddress.String()
	}

	var logger *zap.Logger
	if engineCfg.Node.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	n, err := node.New(engineCfg, logger)
	if err != nil {
		logger.Fatal("node init failed", zap.Error(err))
	}

	n.Start()
	defer n.Stop()

	server := rpc.NewServer(n, logger)
	go func() {
		addr := engineCfg.Node.RPCListenAddress
		if envCfg.RPCPort != "" {
			addr = "0.0.0.0:" + envCfg.RPCPort
		}
		if err := server.Start(addr); err != nil {
			logger.Fatal("rpc server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")
}
