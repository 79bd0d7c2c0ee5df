// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"fmt"
	"os"
	"os/user"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
)

const AWSProfile = "drift"

func getAWSSession(region string) (*session.Session, error) {
	usr, osErr := user.Current()
	if osErr != nil {
		return nil, osErr
	}
	path := fmt.Sprintf("%s/.aws/credentials", usr.HomeDir)
	var creds *credentials.Credentials
	if _, statErr := os.Stat(path); statErr == nil {
		creds = credentials.NewSharedCredentials(path, AWSProfile)
	} else {
		creds = credentials.NewCredentials(&ec2rolecreds.EC2RoleProvider{Client: ec2metadata.New(session.New(aws.NewConfig()))})
	}
	sess, sessErr := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: creds,
	})
	if sessErr != nil {
		return nil, sessErr
	}
	return sess, nil
}
