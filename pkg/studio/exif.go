package studio

import "encoding/binary"

// jpegOrientation extracts the EXIF orientation tag (1..8) from a JPEG byte
// stream. Returns 1 (upright) when the stream is not a JPEG, carries no EXIF
// segment, or the tag is absent. Phone cameras routinely store the sensor
// image unrotated and record the device rotation here, so ignoring the tag
// produces sideways output.
func jpegOrientation(data []byte) int {
	const upright = 1

	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return upright
	}

	// Walk the JPEG segment chain looking for APP1/Exif.
	offset := 2
	for offset+4 <= len(data) {
		if data[offset] != 0xFF {
			return upright
		}
		marker := data[offset+1]
		// SOS: entropy-coded data follows, no EXIF past this point.
		if marker == 0xDA {
			return upright
		}
		segLen := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		if segLen < 2 || offset+2+segLen > len(data) {
			return upright
		}
		if marker == 0xE1 {
			return tiffOrientation(data[offset+4 : offset+2+segLen])
		}
		offset += 2 + segLen
	}
	return upright
}

// tiffOrientation parses an Exif APP1 payload ("Exif\0\0" + TIFF) and returns
// the orientation tag value from IFD0, defaulting to 1.
func tiffOrientation(payload []byte) int {
	const upright = 1
	const exifHeader = "Exif\x00\x00"

	if len(payload) < len(exifHeader)+8 || string(payload[:len(exifHeader)]) != exifHeader {
		return upright
	}
	tiff := payload[len(exifHeader):]

	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return upright
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return upright
	}

	ifdOffset := int(order.Uint32(tiff[4:8]))
	if ifdOffset+2 > len(tiff) {
		return upright
	}
	count := int(order.Uint16(tiff[ifdOffset : ifdOffset+2]))
	for i := range count {
		entry := ifdOffset + 2 + i*12
		if entry+12 > len(tiff) {
			return upright
		}
		tag := order.Uint16(tiff[entry : entry+2])
		if tag != 0x0112 {
			continue
		}
		orientation := int(order.Uint16(tiff[entry+8 : entry+10]))
		if orientation >= 1 && orientation <= 8 {
			return orientation
		}
		return upright
	}
	return upright
}
