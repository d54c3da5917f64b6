////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package cmd initializes the CLI and config parsers as well as the logger.
package cmd

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/ekv"
	"gitlab.com/xx_network/crypto/csprng"
	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/encint"
	"gitlab.com/elixxir/sociograph/event"
	"gitlab.com/elixxir/sociograph/permissions"
	"gitlab.com/elixxir/sociograph/social"
	"gitlab.com/elixxir/sociograph/storage"
	"gitlab.com/elixxir/sociograph/storage/versioned"
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// rootCmd runs a scripted demo session against a ledger on disk (or in
// memory) and prints the resulting network stats.
var rootCmd = &cobra.Command{
	Use:   "sociograph",
	Short: "Runs the encrypted social-graph ledger demo session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLog()

		kv, err := openKV()
		if err != nil {
			jww.FATAL.Panicf("Failed to open session store: %+v", err)
		}

		manager, events := buildManager(kv)
		stop := events.EventService()
		defer func() {
			if err := stop.Close(); err != nil {
				jww.WARN.Printf("Event service close: %+v", err)
			}
		}()

		err = events.RegisterCallback("stdout",
			func(priority int, category, evtType, details string) {
				jww.INFO.Printf("[%s/%s] %s", category, evtType,
					details)
			})
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		runSession(manager)

		stats := manager.GetNetworkStats()
		fmt.Printf("users=%d posts=%d connections=%d messages=%d "+
			"follows=%d\n", stats.Users, stats.Posts,
			stats.Connections, stats.Messages, stats.FollowEdges)
	},
}

func openKV() (*versioned.KV, error) {
	sessionDir := viper.GetString("session")
	if sessionDir == "" {
		jww.INFO.Print("No session dir given; using a memory store")
		return versioned.NewKV(ekv.MakeMemstore()), nil
	}
	fs, err := ekv.NewFilestore(sessionDir, viper.GetString("password"))
	if err != nil {
		return nil, err
	}
	return versioned.NewKV(fs), nil
}

func buildManager(kv *versioned.KV) (*social.Manager, *event.Manager) {
	store, err := storage.LoadStore(kv)
	if err != nil {
		jww.FATAL.Panicf("Failed to load social graph: %+v", err)
	}
	ledger, err := permissions.LoadLedger(kv)
	if err != nil {
		jww.FATAL.Panicf("Failed to load permission ledger: %+v", err)
	}
	eval := encint.NewLocalEvaluator(csprng.NewSystemRNG())
	events := event.NewManager(viper.GetInt("eventRate"))
	return social.NewManager(store, ledger, eval, events), events
}

// runSession drives one interaction of everything the engine supports.
// Precondition failures are expected on a reused session dir, since the
// demo identities are deterministic.
func runSession(manager *social.Manager) {
	alice := demoID("alice")
	bob := demoID("bob")

	logOutcome("register alice",
		manager.RegisterUser(alice, demoHash("alice profile")))
	logOutcome("register bob",
		manager.RegisterUser(bob, demoHash("bob profile")))

	postID, err := manager.CreatePost(alice, demoHash("first post"), 0)
	logOutcome("create post", err)
	if err == nil {
		logOutcome("like post", manager.LikePost(bob, postID))
		logOutcome("share post", manager.SharePost(bob, postID))
	}

	logOutcome("follow", manager.FollowUser(bob, alice))

	msgID, err := manager.SendPrivateMessage(
		bob, alice, demoHash("hello alice"))
	logOutcome("send message", err)
	if err == nil {
		logOutcome("mark read", manager.MarkMessageAsRead(alice, msgID))
	}
}

func logOutcome(what string, err error) {
	if err != nil {
		jww.WARN.Printf("%s: %s", what, err)
	} else {
		jww.INFO.Printf("%s: ok", what)
	}
}

// demoID derives a stable user id from a name.
func demoID(name string) *id.ID {
	digest := sha256.Sum256([]byte(name))
	uid := &id.ID{}
	copy(uid[:], digest[:])
	uid.SetType(id.User)
	return uid
}

func demoHash(content string) []byte {
	digest := sha256.Sum256([]byte(content))
	return digest[:]
}

func initLog() {
	if viper.GetString("logFile") != "" {
		logFile, err := os.OpenFile(viper.GetString("logFile"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Printf("Could not open log file: %+v\n", err)
		} else {
			jww.SetLogOutput(logFile)
		}
	}
	if viper.GetBool("verbose") {
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetLogThreshold(jww.LevelTrace)
	} else {
		jww.SetStdoutThreshold(jww.LevelInfo)
		jww.SetLogThreshold(jww.LevelInfo)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("session", "s", "",
		"Session directory for the ledger; empty runs in memory")
	rootCmd.PersistentFlags().StringP("password", "p", "",
		"Password for the session files")
	rootCmd.PersistentFlags().StringP("logFile", "l", "",
		"Path to the log output path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Verbose mode for debugging")
	rootCmd.PersistentFlags().Int("eventRate", 100,
		"Maximum event deliveries per second")

	for _, flag := range []string{
		"session", "password", "logFile", "verbose", "eventRate"} {
		if err := viper.BindPFlag(
			flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
