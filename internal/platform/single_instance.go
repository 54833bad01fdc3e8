package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/crc32"
	"log"
	"net"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const showRequest = "show"

// InstanceGuard holds the single-instance lock. The bound socket doubles
// as a tiny control channel: a second launch asks the running instance to
// surface itself instead of starting a duplicate game.
type InstanceGuard struct {
	listener net.Listener
	address  string
	onShow   func()
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
// When the port is taken, the running instance is asked to show itself
// and ErrAlreadyRunning is returned.
func AcquireSingleInstance(appName string, onShow func()) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		notifyRunningInstance(address)
		return nil, ErrAlreadyRunning
	}

	guard := &InstanceGuard{
		listener: listener,
		address:  address,
		onShow:   onShow,
	}
	go guard.serve()
	return guard, nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) serve() {
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		go guard.handle(conn)
	}
}

func (guard *InstanceGuard) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	if line == showRequest+"\n" || line == showRequest {
		if guard.onShow != nil {
			guard.onShow()
		}
	}
}

func notifyRunningInstance(address string) {
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		log.Printf("reach running instance: %v", err)
		return
	}
	defer conn.Close()
	fmt.Fprintln(conn, showRequest)
}

func portFromName(appName string) int {
	const (
		minPort = 40000
		maxPort = 49999
	)
	sum := crc32.ChecksumIEEE([]byte(appName))
	return minPort + int(sum%uint32(maxPort-minPort+1))
}
