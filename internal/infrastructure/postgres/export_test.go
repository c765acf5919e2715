package postgres

// ReleaseListenConn expone releaseListenConn a los tests externos.
var ReleaseListenConn = releaseListenConn
