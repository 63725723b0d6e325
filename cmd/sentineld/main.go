/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command sentineld runs the flow-control engine as a standalone process:
// it loads a rule bundle, serves the admin HTTP API for further rule
// pushes and metrics reads, and otherwise sits idle -- protecting calls
// made to it happens over the sentinel package API by whatever process
// embeds this one, or, in cluster mode, by remote callers of the
// EmbeddedServer's token RPC.
package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/automaxprocs/maxprocs"
	"google.golang.org/grpc"

	"mosn.io/sentinel/pkg/log"
	"mosn.io/sentinel/pkg/sentinel"
	"mosn.io/sentinel/pkg/sentinel/admin"
	"mosn.io/sentinel/pkg/sentinel/cluster"
)

var version = "0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "sentineld"
	app.Version = version
	app.Compiled = time.Now()
	app.Usage = "standalone flow control and circuit breaking engine"
	app.Commands = []cli.Command{cmdStart}
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.StartLogger.Errorf("[sentineld] %v", err)
		os.Exit(1)
	}
}

var cmdStart = cli.Command{
	Name:  "start",
	Usage: "start the sentineld process",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "load a rule bundle from `FILE`",
			EnvVar: "SENTINELD_CONFIG",
		},
		cli.StringFlag{
			Name:   "admin-addr, a",
			Usage:  "override the admin listen address",
			EnvVar: "SENTINELD_ADMIN_ADDR",
		},
		cli.StringFlag{
			Name:   "cluster-addr",
			Usage:  "listen address for the embedded cluster token server",
			EnvVar: "SENTINELD_CLUSTER_ADDR",
			Value:  ":18719",
		},
	},
	Action: func(c *cli.Context) error {
		if _, err := maxprocs.Set(); err != nil {
			log.StartLogger.Infof("[sentineld] maxprocs: %v", err)
		}

		cfg, err := loadBootstrapConfig(c.String("config"))
		if err != nil {
			log.StartLogger.Errorf("[sentineld] load config: %v", err)
			os.Exit(1)
		}
		if addr := c.String("admin-addr"); addr != "" {
			cfg.AdminAddr = addr
		}

		sentinel.LoadFlowRules(cfg.FlowRules)
		sentinel.LoadDegradeRules(cfg.DegradeRules)
		sentinel.LoadAuthorityRules(cfg.AuthorityRules)
		if cfg.SystemRule != nil {
			sentinel.LoadSystemRule(cfg.SystemRule)
		}
		log.StartLogger.Infof("[sentineld] loaded %d flow, %d degrade, %d authority rules",
			len(cfg.FlowRules), len(cfg.DegradeRules), len(cfg.AuthorityRules))

		startEmbeddedCluster(cfg, c.String("cluster-addr"))

		srv := admin.NewServer(cfg.AdminAddr)
		srv.Start()

		waitForSignal()
		return nil
	},
}

// startEmbeddedCluster wires an EmbeddedServer for every ClusterMode flow
// rule that carries a ClusterConfig, and exposes it over grpc at addr.
// ClusterConfig has no token-server address field, so no such rule is
// skipped as belonging to a remote server.
func startEmbeddedCluster(cfg *bootstrapConfig, addr string) {
	var serverRules []*cluster.ServerRule
	for _, r := range cfg.FlowRules {
		if !r.ClusterMode || r.Cluster == nil {
			continue
		}
		serverRules = append(serverRules, &cluster.ServerRule{
			FlowID:        r.Cluster.FlowID,
			Resource:      r.Resource,
			Count:         r.Count,
			ThresholdType: cluster.ThresholdType(r.Cluster.ThresholdType),
		})
	}
	if len(serverRules) == 0 {
		return
	}
	embedded := cluster.NewEmbeddedServer()
	embedded.LoadRules(serverRules)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.StartLogger.Errorf("[sentineld] cluster listen %s: %v", addr, err)
		return
	}
	grpcServer := grpc.NewServer()
	cluster.RegisterServer(grpcServer, embedded)
	log.StartLogger.Infof("[sentineld] embedded cluster server serving %d flow ids on %s", len(serverRules), addr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.DefaultLogger.Errorf("[sentineld] cluster server stopped: %v", err)
		}
	}()
}

func waitForSignal() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sigchan
	log.StartLogger.Infof("[sentineld] signal %s received, shutting down", sig)
}
