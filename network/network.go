package network

import (
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/model"
	"github.com/ratel-online/core/network"
	"github.com/ratel-online/core/protocol"
	"github.com/ratel-online/core/util/async"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/service"
	"github.com/ihou-ev/10cardstad/state"
)

// Network is interface of all kinds of network.
type Network interface {
	Serve() error
}

// Session attaches raw connections to the state machine.
type Session struct {
	Machine *state.Machine
	Service *service.Service
}

func (s Session) handle(rwc protocol.ReadWriteCloser) error {
	c := network.Wrapper(rwc)
	defer func() {
		err := c.Close()
		if err != nil {
			log.Error(err)
		}
	}()
	log.Info("new player connected! ")
	authInfo, err := loginAuth(c)
	if err != nil || authInfo.ID == 0 {
		if err == nil {
			err = consts.ErrorsAuthFail
		}
		_ = c.Write(protocol.ErrorPacket(err))
		return err
	}
	player := client.Connected(c, authInfo)
	log.Infof("player auth accessed, %d:%s\n", authInfo.ID, authInfo.Name)
	go s.Machine.Run(player)
	defer player.Offline(s.Service)
	return player.Listening()
}

func loginAuth(c *network.Conn) (*model.AuthInfo, error) {
	authChan := make(chan *model.AuthInfo, 1)
	async.Async(func() {
		packet, err := c.Read()
		if err != nil {
			log.Error(err)
			return
		}
		authInfo := &model.AuthInfo{}
		err = packet.Unmarshal(authInfo)
		if err != nil {
			log.Error(err)
			return
		}
		authChan <- authInfo
	})
	select {
	case authInfo := <-authChan:
		return authInfo, nil
	case <-time.After(3 * time.Second):
		return nil, consts.ErrorsAuthFail
	}
}
