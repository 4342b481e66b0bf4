package testutil

// Text captured from a Mininet CLI session running a depth-2 tree with four
// switches and a remote controller. The port listings keep the wrapped
// command echo and trailing prompt exactly as the terminal returned them.

// MininetDump is the output of the "dump" command.
const MininetDump = `<Host h1: h1-eth0:10.0.0.1 pid=26370>
<Host h2: h2-eth0:10.0.0.2 pid=26371>
<Host h3: h3-eth0:10.0.0.3 pid=26372>
<Host h4: h4-eth0:10.0.0.4 pid=26373>
<Host h5: h5-eth0:10.0.0.5 pid=26374>
<Host h6: h6-eth0:10.0.0.6 pid=26375>
<Host h7: h7-eth0:10.0.0.7 pid=26376>
<Host h8: h8-eth0:10.0.0.8 pid=26377>
<Host h9: h9-eth0:10.0.0.9 pid=26378>
<OVSSwitch s1: lo:127.0.0.1,s1-eth1:None,s1-eth2:None,s1-eth3:None pid=26381>
<OVSSwitch s2: lo:127.0.0.1,s2-eth1:None,s2-eth2:None,s2-eth3:None,s2-eth4:None pid=26386>
<OVSSwitch s3: lo:127.0.0.1,s3-eth1:None,s3-eth2:None,s3-eth3:None,s3-eth4:None pid=26391>
<OVSSwitch s4: lo:127.0.0.1,s4-eth1:None,s4-eth2:None,s4-eth3:None,s4-eth4:None pid=26396>
<RemoteController c0: 127.0.0.1:6633 pid=26363>
    `

// MininetPorts holds the port listing of each switch in MininetDump.
var MininetPorts = map[string]string{
	"s1": `
, i.isUp()) for i in s1.intfs.values()])p=%s" % (i.name, i.MAC(), i.IP()
name=lo,mac=None,ip=127.0.0.1,isUp=True
name=s1-eth1,mac=ce:c5:1e:ee:36:b4,ip=None,isUp=True
name=s1-eth2,mac=de:29:d4:1c:4d:a1,ip=None,isUp=True
name=s1-eth3,mac=b6:2e:aa:c3:2e:0d,ip=None,isUp=True
mininet>
    `,
	"s2": `
, i.isUp()) for i in s2.intfs.values()])p=%s" % (i.name, i.MAC(), i.IP()
name=lo,mac=None,ip=127.0.0.1,isUp=True
name=s2-eth1,mac=3e:cd:cd:bc:d0:bc,ip=None,isUp=True
name=s2-eth2,mac=76:ea:fc:0c:dd:f2,ip=None,isUp=True
name=s2-eth3,mac=5e:2b:cc:f5:a2:e5,ip=None,isUp=True
name=s2-eth4,mac=42:b2:02:de:49:5c,ip=None,isUp=True
mininet>
    `,
	"s3": `
, i.isUp()) for i in s3.intfs.values()])p=%s" % (i.name, i.MAC(), i.IP()
name=lo,mac=None,ip=127.0.0.1,isUp=True
name=s3-eth1,mac=66:c8:b8:3a:d5:c0,ip=None,isUp=True
name=s3-eth2,mac=16:97:73:d7:43:8a,ip=None,isUp=True
name=s3-eth3,mac=96:46:1e:cc:26:36,ip=None,isUp=True
name=s3-eth4,mac=2a:d3:7e:8a:22:72,ip=None,isUp=True
mininet>
    `,
	"s4": `
, i.isUp()) for i in s4.intfs.values()])p=%s" % (i.name, i.MAC(), i.IP()
name=lo,mac=None,ip=127.0.0.1,isUp=True
name=s4-eth1,mac=4a:82:af:b3:dd:bf,ip=None,isUp=True
name=s4-eth2,mac=fa:30:f4:61:c7:c2,ip=None,isUp=False
name=s4-eth3,mac=c2:8f:63:d1:27:f9,ip=None,isUp=True
name=s4-eth4,mac=5e:c8:ae:c9:2c:fc,ip=None,isUp=True
mininet>
    `,
}

// MininetHardwareIDs maps each switch to its datapath id as the driver
// reports it. s1 and s2 share a value.
var MininetHardwareIDs = map[string]string{
	"s1": "2",
	"s2": "2",
	"s3": "3",
	"s4": "4",
}

// MininetControllerListing is "ovs-vsctl get-controller s1" output with one
// passive listener and three active controller connections.
const MininetControllerListing = `sh ovs-vsctl get-controller s1
ptcp:6634
tcp:192.168.5.11:6633
tcp:192.168.5.12:6633
tcp:192.168.5.13:6633
mininet>`
