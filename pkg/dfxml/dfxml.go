package dfxml

import (
	"encoding/xml"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"

	"github.com/csbde/tetherback/pkg/sysinfo"
)

const XmlOutputVersion = "1.0"

var DefaultMetadata = Metadata{
	Xmlns:    "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML",
	XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
	XmlnsDC:  "http://purl.org/dc/elements/1.1/",
	Type:     "Device Backup Report",
}

// DFXMLHeader represents the root element of a DFXML document.
type DFXMLHeader struct {
	XMLName   xml.Name `xml:"dfxml"`
	XmlOutput string   `xml:"xmloutputversion,attr,omitempty"` // written by the writer as an attribute of the root tag
	Metadata  Metadata `xml:"metadata"`
	Creator   Creator  `xml:"creator"`
	Source    Source   `xml:"source"`
}

type Metadata struct {
	Xmlns    string `xml:"xmlns,attr"`
	XmlnsXsi string `xml:"xmlns:xsi,attr"`
	XmlnsDC  string `xml:"xmlns:dc,attr"`
	Type     string `xml:"dc:type"`
}

// Creator describes the software and host that produced the backup.
type Creator struct {
	Package              string  `xml:"package"`
	Version              string  `xml:"version"`
	ExecutionEnvironment ExecEnv `xml:"execution_environment"`
}

type ExecEnv struct {
	OS      string `xml:"os_sysname"`
	Release string `xml:"os_release"`
	Version string `xml:"os_version"`
	Host    string `xml:"host"`
	Arch    string `xml:"arch"`
	UID     int    `xml:"uid"`
	Start   string `xml:"start_time"`
}

// Source describes the device the images were pulled from.
type Source struct {
	Session     string `xml:"session"`
	Serial      string `xml:"device_serial,omitempty"`
	Kernel      string `xml:"device_kernel"`
	BlockDevice string `xml:"block_device"`
	SectorSize  int    `xml:"sectorsize"`
	Partitions  int    `xml:"partitions"`
	BackupDir   string `xml:"backup_directory"`
}

// FileObject describes one image written to the backup directory.
type FileObject struct {
	XMLName   xml.Name  `xml:"fileobject"`
	Filename  string    `xml:"filename"`
	FileSize  uint64    `xml:"filesize"`
	Method    string    `xml:"method"` // "raw" or "tar"
	Partition Partition `xml:"partition"`
}

type Partition struct {
	Num        int    `xml:"num,attr"`
	Name       string `xml:"name,attr"`
	Device     string `xml:"device,attr"`
	MountPoint string `xml:"mountpoint,attr,omitempty"`
	Size       uint64 `xml:"len,attr"` // uncompressed, in bytes
}

// GetExecEnv describes the host running the backup.
func GetExecEnv() ExecEnv {
	sinfo, err := sysinfo.Stat()
	if err != nil {
		sinfo = &sysinfo.SysUnknown
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if u, err := user.Current(); err == nil {
		if v, err := strconv.Atoi(u.Uid); err == nil {
			uid = v
		}
	}

	return ExecEnv{
		OS:      sinfo.Name,
		Release: sinfo.Release,
		Version: sinfo.Version,
		Host:    host,
		Arch:    runtime.GOARCH,
		UID:     uid,
		Start:   time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
}
